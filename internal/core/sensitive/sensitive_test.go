package sensitive

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	r := NewResolver(DefaultTable())

	tests := []struct {
		dataset string
		mode    string
		want    string
		wantErr bool
	}{
		{dataset: "31", mode: "0", want: "8"},
		{dataset: "31", mode: "1", want: "12"},
		{dataset: "31", mode: "2", want: "8_12"},
		{dataset: "44162", mode: "2", want: "0_3"},
		{dataset: "179", mode: "0", want: "9"},
		{dataset: "179", mode: "2", want: "8_9"},
		{dataset: "31", mode: "3", wantErr: true},
		{dataset: "179", mode: "3", wantErr: true},
		{dataset: "1461", mode: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dataset+"/"+tt.mode, func(t *testing.T) {
			got, err := r.Resolve(tt.dataset, tt.mode)
			if tt.wantErr {
				var lookupErr *LookupError
				if !errors.As(err, &lookupErr) {
					t.Fatalf("Resolve() error = %v, want *LookupError", err)
				}
				if lookupErr.Dataset != tt.dataset || lookupErr.Mode != tt.mode {
					t.Errorf("LookupError = %+v, want dataset %s mode %s", lookupErr, tt.dataset, tt.mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_InjectedTable(t *testing.T) {
	r := NewResolver(Table{"42": {"0": "1"}})

	got, err := r.Resolve("42", "0")
	if err != nil || got != "1" {
		t.Errorf("Resolve(42, 0) = %q, %v", got, err)
	}
	if _, err := r.Resolve("31", "0"); err == nil {
		t.Error("injected table should not fall back to defaults")
	}
}

func TestDatasets(t *testing.T) {
	got := NewResolver(DefaultTable()).Datasets()
	want := []string{"179", "31", "44162"}
	if len(got) != len(want) {
		t.Fatalf("Datasets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Datasets()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolve_UnknownDatasetListsKnown(t *testing.T) {
	_, err := NewResolver(DefaultTable()).Resolve("1461", "0")
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "known: 179, 31, 44162"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should contain %q", err.Error(), want)
	}
}
