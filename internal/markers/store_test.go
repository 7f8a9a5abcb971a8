package markers

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"prospector/internal/utils"
)

type failingKV struct {
	getErr error
	setErr error
	data   []byte
}

func (f *failingKV) Get(string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.data, f.data != nil, nil
}

func (f *failingKV) Set(_ string, v []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data = v
	return nil
}

func TestStore_ToggleSurvivesReload(t *testing.T) {
	kv := NewMemoryKV()

	s := Load[int](kv, PositionKey)
	on, err := s.Toggle(5)
	if err != nil {
		t.Fatalf("wanted: nil\ngot: %v", err)
	}
	if !on {
		t.Fatalf("wanted 5 to be marked")
	}

	reloaded := Load[int](kv, PositionKey)
	if !reloaded.Has(5) {
		t.Fatalf("wanted reloaded set to contain 5, got %v", reloaded.IDs())
	}
}

func TestStore_DoubleToggleSurvivesReload(t *testing.T) {
	kv := NewMemoryKV()

	s := Load[int](kv, PositionKey)
	s.Toggle(5)
	s.Toggle(5)

	reloaded := Load[int](kv, PositionKey)
	if reloaded.Has(5) {
		t.Fatalf("wanted 5 to be unmarked after reload, got %v", reloaded.IDs())
	}
}

func TestStore_WireFormat(t *testing.T) {
	kv := NewMemoryKV()
	s := Load[int](kv, PositionKey)
	for _, id := range []int{9, 2, 4} {
		s.Toggle(id)
	}

	raw, _, _ := kv.Get(PositionKey)
	if string(raw) != "[2,4,9]" {
		t.Fatalf("wanted: %s\ngot: %s", "[2,4,9]", raw)
	}
}

func TestStore_ReadsExistingList(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(RecordKey, []byte(`["b","a"]`))

	s := Load[string](kv, RecordKey)
	if diff := cmp.Diff([]string{"a", "b"}, s.IDs()); diff != "" {
		t.Fatalf("IDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_DegradesToEmpty(t *testing.T) {
	var logs bytes.Buffer
	utils.SetLogOutput(&logs)

	t.Run("read error", func(t *testing.T) {
		logs.Reset()
		s := Load[int](&failingKV{getErr: errors.New("disk gone")}, PositionKey)
		if s.Len() != 0 {
			t.Fatalf("wanted empty set, got %v", s.IDs())
		}
		if !strings.Contains(logs.String(), "disk gone") {
			t.Fatalf("wanted read failure to be logged, got %q", logs.String())
		}
	})

	t.Run("corrupt payload", func(t *testing.T) {
		logs.Reset()
		s := Load[int](&failingKV{data: []byte("{not json")}, PositionKey)
		if s.Len() != 0 {
			t.Fatalf("wanted empty set, got %v", s.IDs())
		}
		if logs.Len() == 0 {
			t.Fatalf("wanted parse failure to be logged")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		s := Load[string](NewMemoryKV(), RecordKey)
		if s.Len() != 0 {
			t.Fatalf("wanted empty set, got %v", s.IDs())
		}
	})
}

func TestStore_WriteFailureKeepsState(t *testing.T) {
	kv := &failingKV{data: []byte("[1]")}
	s := Load[int](kv, PositionKey)

	kv.setErr = errors.New("read-only")
	on, err := s.Toggle(2)
	if err == nil {
		t.Fatalf("wanted error, got nil")
	}
	if on || s.Has(2) {
		t.Fatalf("wanted 2 to stay unmarked after failed write")
	}

	_, err = s.Toggle(1)
	if err == nil {
		t.Fatalf("wanted error, got nil")
	}
	if !s.Has(1) {
		t.Fatalf("wanted 1 to stay marked after failed write")
	}
}
