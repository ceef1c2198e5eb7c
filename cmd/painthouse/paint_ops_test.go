package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaintOp(t *testing.T) {
	tests := []struct {
		in      string
		want    paintOp
		wantErr bool
	}{
		{in: "400,300=#ff5733", want: paintOp{X: 400, Y: 300, Hex: "#FF5733"}},
		{in: "12.5, 7=0f0", want: paintOp{X: 12.5, Y: 7, Hex: "#00FF00"}},
		{in: "400,300", wantErr: true},
		{in: "400=#FFFFFF", wantErr: true},
		{in: "a,1=#FFFFFF", wantErr: true},
		{in: "1,b=#FFFFFF", wantErr: true},
		{in: "1,2=#GGGGGG", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePaintOp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaintOpsFlag(t *testing.T) {
	var ops paintOps
	require.NoError(t, ops.Set("1,2=#000000"))
	require.NoError(t, ops.Set("3,4=#FFF"))
	assert.Error(t, ops.Set("nope"))

	assert.Len(t, ops, 2)
	assert.Equal(t, "1,2=#000000 3,4=#FFFFFF", ops.String())
}
