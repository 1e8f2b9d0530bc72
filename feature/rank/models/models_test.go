package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestComputeID(t *testing.T) {
	r := Rank{ProjectID: "V1StGXR8_Z5jdHi6B-myT", ItemID: "4f90d13a42bCdEfGhIjKl"}
	r.SetComputedID()
	assert.Equal(t, "V1StGXR8_Z5jdHi6B-myT4f90d13a42bCdEfGhIjKl", r.ID)
	assert.Len(t, r.ID, 42)
	assert.Equal(t, r.ID, ComputeID(r.ProjectID, r.ItemID))
}

func TestUpdateScore(t *testing.T) {
	r := Rank{Min: 1, Max: 5}

	require.NoError(t, r.UpdateScore(5))
	assert.Equal(t, int64(1), r.Total)
	assert.Equal(t, 5.0, r.Average)

	require.NoError(t, r.UpdateScore(1))
	assert.Equal(t, int64(2), r.Total)
	assert.Equal(t, 3.0, r.Average)

	require.NoError(t, r.UpdateScore(3))
	assert.Equal(t, int64(3), r.Total)
	assert.InDelta(t, 3.0, r.Average, 1e-9)
}

func TestUpdateScore_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		ok    bool
	}{
		{"Min Inclusive", 0, true},
		{"Max Inclusive", 20, true},
		{"Below", -0.5, false},
		{"Above", 20.1, false},
		{"NaN", math.NaN(), false},
		{"Inf", math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Rank{Min: 0, Max: 20, Average: 10, Total: 1}
			err := r.UpdateScore(tt.score)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, int64(2), r.Total)
				return
			}
			assert.ErrorIs(t, err, ErrScoreOutOfRange)
			assert.Equal(t, int64(1), r.Total, "rejected score leaves the rank untouched")
			assert.Equal(t, 10.0, r.Average)
		})
	}
}

func TestCreateItemRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  CreateItemRequest
		ok   bool
	}{
		{"Valid", CreateItemRequest{ItemID: "item", Min: ptr(1), Max: ptr(5)}, true},
		{"Zero Min", CreateItemRequest{ItemID: "item", Min: ptr(0), Max: ptr(100)}, true},
		{"Missing Item", CreateItemRequest{Min: ptr(1), Max: ptr(5)}, false},
		{"Slash In Item", CreateItemRequest{ItemID: "a/b", Min: ptr(1), Max: ptr(5)}, false},
		{"Missing Min", CreateItemRequest{ItemID: "item", Max: ptr(5)}, false},
		{"Missing Max", CreateItemRequest{ItemID: "item", Min: ptr(1)}, false},
		{"Inverted", CreateItemRequest{ItemID: "item", Min: ptr(5), Max: ptr(1)}, false},
		{"Empty Range", CreateItemRequest{ItemID: "item", Min: ptr(3), Max: ptr(3)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRequest)
			}
		})
	}
}

func TestRankItemRequest_Validate(t *testing.T) {
	assert.NoError(t, (&RankItemRequest{Score: ptr(0)}).Validate())
	assert.ErrorIs(t, (&RankItemRequest{}).Validate(), ErrInvalidRequest)
}

func TestValidatePathIDs(t *testing.T) {
	assert.NoError(t, ValidateProjectID("project"))
	assert.ErrorIs(t, ValidateProjectID(""), ErrInvalidRequest)
	assert.NoError(t, ValidateItemID("item"))
	assert.ErrorIs(t, ValidateItemID("x/y"), ErrInvalidRequest)
}
