package seeding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/seedconditions/internal/catalog"
	"github.com/alanyoungcy/seedconditions/internal/domain"
	"github.com/alanyoungcy/seedconditions/internal/oracle"
	"github.com/alanyoungcy/seedconditions/internal/platform/mint"
)

// stubMint is an in-process mint that records the registrations it receives.
// conditionStatus and partitionStatus override the answer for the n-th call
// (zero-based).
type stubMint struct {
	mu              sync.Mutex
	conditions      []domain.RegisterConditionRequest
	partitions      map[string]domain.RegisterPartitionRequest
	partitionOrder  []string
	conditionStatus map[int]stubReply
	partitionStatus map[int]stubReply
}

type stubReply struct {
	status int
	body   string
}

func newStubMint() *stubMint {
	return &stubMint{partitions: map[string]domain.RegisterPartitionRequest{}}
}

func (s *stubMint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/v1/conditions" {
		var req domain.RegisterConditionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		n := len(s.conditions)
		s.conditions = append(s.conditions, req)
		if reply, ok := s.conditionStatus[n]; ok {
			w.WriteHeader(reply.status)
			_, _ = io.WriteString(w, reply.body)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"condition_id": fmt.Sprintf("%064x", n+1)})
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/v1/conditions/")
	conditionID, ok2 := strings.CutSuffix(rest, "/partitions")
	if !ok || !ok2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var req domain.RegisterPartitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	n := len(s.partitionOrder)
	s.partitionOrder = append(s.partitionOrder, conditionID)
	s.partitions[conditionID] = req
	if reply, ok := s.partitionStatus[n]; ok {
		w.WriteHeader(reply.status)
		_, _ = io.WriteString(w, reply.body)
		return
	}
	keysets := map[string]string{}
	for i, label := range req.Partition {
		keysets[label] = fmt.Sprintf("ks%d%d", n, i)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"keysets": keysets})
}

func runScenario(t *testing.T, stub *stubMint) (domain.SeedReport, string, string) {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	id, err := oracle.NewIdentity()
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	wf := NewWorkflow(
		mint.NewClient(srv.URL),
		oracle.NewBuilder(id),
		NewConsole(&out, &errOut),
		srv.URL,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	report, err := wf.Run(context.Background(), catalog.Markets())
	require.NoError(t, err)
	return report, out.String(), errOut.String()
}

func TestScenarioAllMarketsSucceed(t *testing.T) {
	stub := newStubMint()
	report, out, errOut := runScenario(t, stub)

	require.Len(t, stub.conditions, 3)
	require.Len(t, stub.partitionOrder, 3)
	require.Equal(t, 3, report.Succeeded())
	require.Equal(t, 3, strings.Count(out, "  keysets: "))
	require.Equal(t, 3, strings.Count(out, "  condition_id: "))
	require.True(t, strings.HasSuffix(out, "Seeding complete.\n"))
	require.Empty(t, errOut)

	markets := catalog.Markets()
	for i, req := range stub.conditions {
		assert.Equal(t, 1, req.Threshold)
		assert.Equal(t, domain.ConditionTypeEnum, req.ConditionType)
		require.Len(t, req.Announcements, 1)

		parsed, err := oracle.ParseAnnouncement(req.Announcements[0])
		require.NoError(t, err)
		require.NoError(t, parsed.Verify())
		assert.Equal(t, markets[i].Outcomes, parsed.Outcomes)
		assert.Equal(t, markets[i].EventID, parsed.EventID)
	}
	for i, conditionID := range stub.partitionOrder {
		req := stub.partitions[conditionID]
		assert.Equal(t, report.Outcomes[i].ConditionID, conditionID)
		assert.Equal(t, markets[i].Outcomes, req.Partition)
		assert.Equal(t, "sat", req.Collateral)
		assert.Equal(t, strings.Repeat("0", 64), req.ParentCollectionID)
	}
}

func TestScenarioSecondConditionRejected(t *testing.T) {
	stub := newStubMint()
	stub.conditionStatus = map[int]stubReply{1: {status: http.StatusBadRequest, body: `{"error":"duplicate description"}`}}

	report, out, errOut := runScenario(t, stub)

	require.Len(t, stub.conditions, 3)
	require.Len(t, stub.partitionOrder, 2)
	require.Equal(t, 2, report.Succeeded())
	require.Equal(t, domain.MarketFailed, report.Outcomes[1].State)
	require.Empty(t, report.Outcomes[1].ConditionID)

	require.Contains(t, errOut, "condition")
	require.Contains(t, errOut, "400")
	require.Contains(t, errOut, `{"error":"duplicate description"}`)
	require.Equal(t, 2, strings.Count(out, "  keysets: "))
	require.Contains(t, out, "Seeding: Fed Q1 2026 Rate Decision")
	require.True(t, strings.HasSuffix(out, "Seeding complete.\n"))
}

func TestScenarioFirstPartitionRejected(t *testing.T) {
	stub := newStubMint()
	stub.partitionStatus = map[int]stubReply{0: {status: http.StatusInternalServerError, body: "keyset issuance failed"}}

	report, out, errOut := runScenario(t, stub)

	require.Len(t, stub.partitionOrder, 3)
	require.Equal(t, 2, report.Succeeded())
	require.Nil(t, report.Outcomes[0].Keysets)
	require.NotEmpty(t, report.Outcomes[0].ConditionID)
	require.NotNil(t, report.Outcomes[1].Keysets)
	require.NotNil(t, report.Outcomes[2].Keysets)

	require.Contains(t, errOut, "Failed to register partition (500 Internal Server Error): keyset issuance failed")
	require.Equal(t, 2, strings.Count(out, "  keysets: "))
	require.True(t, strings.HasSuffix(out, "Seeding complete.\n"))
}
