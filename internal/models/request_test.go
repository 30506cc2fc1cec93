package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gridcast/gridcast/internal/timeseries"
)

func TestIngestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{
			name:    "both bounds empty",
			start:   "",
			end:     "",
			wantErr: false,
		},
		{
			name:    "valid explicit range",
			start:   "2001-01",
			end:     "2024-06",
			wantErr: false,
		},
		{
			name:    "start only",
			start:   "2020-01",
			end:     "",
			wantErr: false,
		},
		{
			name:    "end before start",
			start:   "2024-06",
			end:     "2024-01",
			wantErr: true,
		},
		{
			name:    "malformed start",
			start:   "202401",
			end:     "",
			wantErr: true,
		},
		{
			name:    "malformed end",
			start:   "",
			end:     "2024-13",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := IngestRequest{Start: tt.start, End: tt.end}
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIngestRequest_Range(t *testing.T) {
	req := IngestRequest{Start: "2020-01", End: "2024-06"}
	assert.NoError(t, req.Validate())

	start, end := req.Range()
	assert.Equal(t, timeseries.NewPeriod(2020, time.January), *start)
	assert.Equal(t, timeseries.NewPeriod(2024, time.June), *end)

	start, end = (&IngestRequest{}).Range()
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestForecastRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ForecastRequest{}).Validate())
	assert.NoError(t, (&ForecastRequest{AsOf: "2023-12"}).Validate())
	assert.Error(t, (&ForecastRequest{AsOf: "december"}).Validate())
}

func TestForecastRequest_AsOfPeriod(t *testing.T) {
	req := ForecastRequest{AsOf: "2023-12"}
	assert.NoError(t, req.Validate())
	assert.Equal(t, timeseries.NewPeriod(2023, time.December), *req.AsOfPeriod())

	assert.Nil(t, (&ForecastRequest{}).AsOfPeriod())
}
