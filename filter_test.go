package loguru

import "testing"

func TestNameFilter(t *testing.T) {
	f := NameFilter("pkg/server")
	cases := []struct {
		name string
		want bool
	}{
		{"pkg/server", true},
		{"pkg/server.sub", true},
		{"pkg/serverish", false},
		{"other", false},
	}
	for _, c := range cases {
		got := f(Record{Name: c.name})
		if got != c.want {
			t.Fatalf("NameFilter(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestExcludeFilter(t *testing.T) {
	f := ExcludeFilter("pkg/server")
	if f(Record{Name: "pkg/server"}) {
		t.Fatal("ExcludeFilter should reject the named namespace")
	}
	if !f(Record{Name: "other"}) {
		t.Fatal("ExcludeFilter should accept anything outside the namespace")
	}
}

func TestAllFilter(t *testing.T) {
	accept := func(Record) bool { return true }
	reject := func(Record) bool { return false }

	if !AllFilter(accept, accept)(Record{}) {
		t.Fatal("AllFilter should accept when every filter accepts")
	}
	if AllFilter(accept, reject)(Record{}) {
		t.Fatal("AllFilter should reject when any filter rejects")
	}
	if !AllFilter()(Record{}) {
		t.Fatal("AllFilter with no filters should accept everything")
	}
}

func TestAnyFilter(t *testing.T) {
	accept := func(Record) bool { return true }
	reject := func(Record) bool { return false }

	if !AnyFilter(reject, accept)(Record{}) {
		t.Fatal("AnyFilter should accept when any filter accepts")
	}
	if AnyFilter(reject, reject)(Record{}) {
		t.Fatal("AnyFilter should reject when every filter rejects")
	}
}
