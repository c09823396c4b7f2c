package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFetchRate(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    float64
		wantErr error
	}{
		{
			name:   "computes value over nominal",
			status: http.StatusOK,
			body:   `{"Valute": {"UAH": {"Value": 20.75, "Nominal": 10}}}`,
			want:   2.075,
		},
		{
			name:   "nominal of one",
			status: http.StatusOK,
			body:   `{"Valute": {"UAH": {"Value": 2.1, "Nominal": 1}}}`,
			want:   2.1,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    "oops",
			wantErr: ErrUnavailable,
		},
		{
			name:    "not JSON",
			status:  http.StatusOK,
			body:    "<html>blocked</html>",
			wantErr: ErrMalformed,
		},
		{
			name:    "currency missing from document",
			status:  http.StatusOK,
			body:    `{"Valute": {"USD": {"Value": 90, "Nominal": 1}}}`,
			wantErr: ErrMalformed,
		},
		{
			name:    "zero nominal",
			status:  http.StatusOK,
			body:    `{"Valute": {"UAH": {"Value": 20.75, "Nominal": 0}}}`,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewRateClient(srv.URL, 2*time.Second, zap.NewNop())
			got, err := client.FetchRate(context.Background())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FetchRate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchRate() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FetchRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetchRateUnreachableHost(t *testing.T) {
	// A server that is already closed simulates a transport failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewRateClient(srv.URL, time.Second, zap.NewNop())
	if _, err := client.FetchRate(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("FetchRate() error = %v, want ErrUnavailable", err)
	}
}
