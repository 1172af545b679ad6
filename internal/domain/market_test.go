package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarketDefinitionValidate(t *testing.T) {
	ok := MarketDefinition{Description: "d", Outcomes: []string{"Yes"}, EventID: "e"}
	require.NoError(t, ok.Validate())

	cases := map[string]MarketDefinition{
		"empty description": {Outcomes: []string{"Yes"}, EventID: "e"},
		"empty event id":    {Description: "d", Outcomes: []string{"Yes"}},
		"no outcomes":       {Description: "d", EventID: "e"},
		"blank outcome":     {Description: "d", Outcomes: []string{"Yes", " "}, EventID: "e"},
		"duplicate outcome": {Description: "d", Outcomes: []string{"Yes", "Yes"}, EventID: "e"},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, m.Validate(), ErrInvalidMarket)
		})
	}
}

func TestValidateCatalogRejectsDuplicateEvents(t *testing.T) {
	markets := []MarketDefinition{
		{Description: "a", Outcomes: []string{"Yes", "No"}, EventID: "same"},
		{Description: "b", Outcomes: []string{"Yes", "No"}, EventID: "same"},
	}
	require.ErrorIs(t, ValidateCatalog(markets), ErrInvalidMarket)
	require.NoError(t, ValidateCatalog(markets[:1]))
	require.NoError(t, ValidateCatalog(nil))
}

func TestKeysetsFormatFollowsOrder(t *testing.T) {
	ks := Keysets{"No": "b", "Yes": "a", "Extra": "c"}
	require.Equal(t, "{Yes=a, No=b, Extra=c}", ks.Format([]string{"Yes", "No", "Missing"}))
	require.Equal(t, "{}", Keysets{}.Format(nil))
}

func TestRootCollectionID(t *testing.T) {
	require.Len(t, RootCollectionID, 64)
	for _, c := range RootCollectionID {
		require.Equal(t, '0', c)
	}
}

func TestSeedReportCounts(t *testing.T) {
	r := SeedReport{Outcomes: []MarketOutcome{
		{State: MarketPartitionRegistered},
		{State: MarketFailed, Failure: &MarketFailure{Stage: StageCondition, Status: 400}},
		{State: MarketPartitionRegistered},
		{State: MarketConditionRegistered},
	}}
	require.Equal(t, 2, r.Succeeded())
	require.Equal(t, 1, r.Failed())
}

func TestRegistrationErrorMessage(t *testing.T) {
	err := &RegistrationError{Stage: StagePartition, Status: 500, Body: "boom"}
	require.Equal(t, "register partition: HTTP 500: boom", err.Error())
}
