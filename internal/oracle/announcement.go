// Package oracle builds DLC oracle announcements for enumerated events. An
// announcement commits an oracle key to an ordered outcome set, a maturity and
// an event id; the mint binds conditions to it.
package oracle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

const announcementTag = "DLC/oracle/announcement/v0"

// Identity is the oracle signing key used for every announcement of a run.
type Identity struct {
	priv *btcec.PrivateKey
}

// NewIdentity returns an identity with a freshly generated key.
func NewIdentity() (*Identity, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("oracle: generate key: %w", err)
	}
	return &Identity{priv: priv}, nil
}

// IdentityFromHex builds an identity from a 32-byte hex private key.
func IdentityFromHex(keyHex string) (*Identity, error) {
	b, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("oracle: decode key: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("oracle: expected 32-byte key, got %d bytes", len(b))
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	return &Identity{priv: priv}, nil
}

// PublicKey returns the x-only public key.
func (id *Identity) PublicKey() []byte {
	return schnorr.SerializePubKey(id.priv.PubKey())
}

// Event is the full metadata of an announcement, including the nonce secret
// the oracle needs to attest later.
type Event struct {
	EventID      string
	Outcomes     []string
	Maturity     time.Time
	NonceKey     *btcec.PrivateKey
	Announcement []byte
}

// Hex returns the announcement in the encoding the mint expects.
func (e *Event) Hex() string {
	return hex.EncodeToString(e.Announcement)
}

// Builder creates announcements for a single identity.
type Builder struct {
	identity *Identity
}

// NewBuilder returns a Builder signing with identity.
func NewBuilder(identity *Identity) *Builder {
	return &Builder{identity: identity}
}

// Announce builds and signs an enum-event announcement. A zero maturity is
// encoded as epoch 0.
func (b *Builder) Announce(outcomes []string, eventID string, maturity time.Time) (*Event, error) {
	if len(outcomes) == 0 {
		return nil, errors.New("oracle: announcement needs at least one outcome")
	}
	if len(outcomes) > 0xffff {
		return nil, fmt.Errorf("oracle: too many outcomes (%d)", len(outcomes))
	}
	var epoch uint32
	if !maturity.IsZero() {
		if maturity.Unix() < 0 || maturity.Unix() > 0xffffffff {
			return nil, fmt.Errorf("oracle: maturity %s out of range", maturity)
		}
		epoch = uint32(maturity.Unix())
	}

	nonce, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("oracle: generate nonce: %w", err)
	}

	event := encodeEvent(schnorr.SerializePubKey(nonce.PubKey()), epoch, outcomes, eventID)
	digest := taggedHash(announcementTag, event)
	sig, err := schnorr.Sign(b.identity.priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("oracle: sign announcement: %w", err)
	}

	var body writer
	body.raw(sig.Serialize())
	body.raw(b.identity.PublicKey())
	body.tlv(typeOracleEvent, event)

	var out writer
	out.tlv(typeOracleAnnouncement, body.buf)

	labels := make([]string, len(outcomes))
	copy(labels, outcomes)
	return &Event{
		EventID:      eventID,
		Outcomes:     labels,
		Maturity:     time.Unix(int64(epoch), 0).UTC(),
		NonceKey:     nonce,
		Announcement: out.buf,
	}, nil
}

// BuildAnnouncement implements domain.AnnouncementBuilder.
func (b *Builder) BuildAnnouncement(outcomes []string, eventID string, maturity time.Time) (domain.OracleAnnouncement, error) {
	ev, err := b.Announce(outcomes, eventID, maturity)
	if err != nil {
		return domain.OracleAnnouncement{}, err
	}
	return domain.OracleAnnouncement{
		EventID:      ev.EventID,
		Outcomes:     ev.Outcomes,
		Maturity:     ev.Maturity,
		OraclePubKey: hex.EncodeToString(b.identity.PublicKey()),
		Value:        ev.Hex(),
	}, nil
}

// Parsed is a decoded announcement.
type Parsed struct {
	Signature []byte
	PublicKey []byte
	Nonces    [][]byte
	Maturity  time.Time
	Outcomes  []string
	EventID   string

	event []byte
}

// Verify checks the announcement signature against its oracle key.
func (p *Parsed) Verify() error {
	pub, err := schnorr.ParsePubKey(p.PublicKey)
	if err != nil {
		return fmt.Errorf("oracle: parse public key: %w", err)
	}
	sig, err := schnorr.ParseSignature(p.Signature)
	if err != nil {
		return fmt.Errorf("oracle: parse signature: %w", err)
	}
	digest := taggedHash(announcementTag, p.event)
	if !sig.Verify(digest[:], pub) {
		return errors.New("oracle: announcement signature does not verify")
	}
	return nil
}

// ParseAnnouncement decodes a hex announcement produced by Builder.
func ParseAnnouncement(announcementHex string) (*Parsed, error) {
	raw, err := hex.DecodeString(announcementHex)
	if err != nil {
		return nil, fmt.Errorf("oracle: decode hex: %w", err)
	}
	outer := reader{buf: raw}
	body, err := outer.tlv(typeOracleAnnouncement)
	if err != nil {
		return nil, err
	}

	r := reader{buf: body}
	p := &Parsed{}
	if p.Signature, err = r.take(64); err != nil {
		return nil, err
	}
	if p.PublicKey, err = r.take(32); err != nil {
		return nil, err
	}
	if p.event, err = r.tlv(typeOracleEvent); err != nil {
		return nil, err
	}

	ev := reader{buf: p.event}
	count, err := ev.u16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(count); i++ {
		n, err := ev.take(32)
		if err != nil {
			return nil, err
		}
		p.Nonces = append(p.Nonces, n)
	}
	epoch, err := ev.u32()
	if err != nil {
		return nil, err
	}
	p.Maturity = time.Unix(int64(epoch), 0).UTC()

	desc, err := ev.tlv(typeEnumEventDescriptor)
	if err != nil {
		return nil, err
	}
	d := reader{buf: desc}
	outcomes, err := d.u16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(outcomes); i++ {
		o, err := d.str()
		if err != nil {
			return nil, err
		}
		p.Outcomes = append(p.Outcomes, o)
	}
	if p.EventID, err = ev.str(); err != nil {
		return nil, err
	}
	return p, nil
}

func encodeEvent(nonce []byte, maturity uint32, outcomes []string, eventID string) []byte {
	var desc writer
	desc.u16(uint16(len(outcomes)))
	for _, o := range outcomes {
		desc.str(o)
	}

	var ev writer
	ev.u16(1)
	ev.raw(nonce)
	ev.u32(maturity)
	ev.tlv(typeEnumEventDescriptor, desc.buf)
	ev.str(eventID)
	return ev.buf
}

// taggedHash is the BIP-340 tagged hash sha256(sha256(tag) || sha256(tag) || msg).
func taggedHash(tag string, msg []byte) [32]byte {
	t := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(t[:])
	h.Write(t[:])
	h.Write(msg)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

var _ domain.AnnouncementBuilder = (*Builder)(nil)
