package backend

import (
	"context"
	"testing"

	"github.com/vecadmin/vecadmin/internal/domain"
)

// recordingStore counts calls so tests can observe which facade the
// dispatcher picked.
type recordingStore struct {
	calls map[string]int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{calls: map[string]int{}}
}

func (s *recordingStore) ListCollections(context.Context, domain.Connection) ([]domain.Collection, error) {
	s.calls["list"]++
	return nil, nil
}

func (s *recordingStore) FetchRecords(context.Context, domain.Connection, string, int, domain.Filter) ([]domain.Record, error) {
	s.calls["fetch"]++
	return nil, nil
}

func (s *recordingStore) GetRecord(context.Context, domain.Connection, string, string) (domain.Record, error) {
	s.calls["get"]++
	return domain.Record{}, nil
}

func (s *recordingStore) CountRecords(context.Context, domain.Connection, string, domain.Filter) (int, error) {
	s.calls["count"]++
	return 0, nil
}

func (s *recordingStore) Query(context.Context, domain.Connection, string, []float32, domain.Filter) ([]domain.Record, error) {
	s.calls["query"]++
	return nil, nil
}

func (s *recordingStore) QueryByID(context.Context, domain.Connection, string, string) (domain.Record, error) {
	s.calls["query_by_id"]++
	return domain.Record{}, nil
}

func (s *recordingStore) DeleteRecord(context.Context, domain.Connection, string, string) error {
	s.calls["delete_record"]++
	return nil
}

func (s *recordingStore) DeleteCollection(context.Context, domain.Connection, string) error {
	s.calls["delete_collection"]++
	return nil
}

func (s *recordingStore) RenameCollection(context.Context, domain.Connection, string, string) error {
	s.calls["rename"]++
	return nil
}

func (s *recordingStore) total() int {
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// exercise drives every operation once.
func exercise(t *testing.T, d *Dispatcher, conn domain.Connection) {
	t.Helper()
	ctx := context.Background()
	if _, err := d.ListCollections(ctx, conn); err != nil {
		t.Fatal(err)
	}
	if _, err := d.FetchRecords(ctx, conn, "c", 1, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := d.GetRecord(ctx, conn, "c", "r"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.CountRecords(ctx, conn, "c", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Query(ctx, conn, "c", []float32{1}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := d.QueryByID(ctx, conn, "c", "r"); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteRecord(ctx, conn, "c", "r"); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteCollection(ctx, conn, "c"); err != nil {
		t.Fatal(err)
	}
	if err := d.RenameCollection(ctx, conn, "c", "c2"); err != nil {
		t.Fatal(err)
	}
}

func TestDispatcher_RoutesByVersion(t *testing.T) {
	cases := []struct {
		name    string
		version domain.Version
		wantV2  bool
	}{
		{"legacy", domain.VersionV1, false},
		{"current", domain.VersionV2, true},
		{"empty defaults to legacy", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v1 := newRecordingStore()
			v2 := newRecordingStore()
			d := NewDispatcher(v1, v2)

			exercise(t, d, domain.Connection{Endpoint: "http://db", Version: tc.version})

			chosen, other := v1, v2
			if tc.wantV2 {
				chosen, other = v2, v1
			}
			if chosen.total() != 9 {
				t.Errorf("chosen facade saw %d calls, want 9: %v", chosen.total(), chosen.calls)
			}
			if other.total() != 0 {
				t.Errorf("other facade saw calls: %v", other.calls)
			}
		})
	}
}

func TestDispatcher_PicksPerCall(t *testing.T) {
	v1 := newRecordingStore()
	v2 := newRecordingStore()
	d := NewDispatcher(v1, v2)
	ctx := context.Background()

	if _, err := d.ListCollections(ctx, domain.Connection{Version: domain.VersionV1}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ListCollections(ctx, domain.Connection{Version: domain.VersionV2}); err != nil {
		t.Fatal(err)
	}

	if v1.calls["list"] != 1 || v2.calls["list"] != 1 {
		t.Errorf("calls not split per connection: v1=%v v2=%v", v1.calls, v2.calls)
	}
}
