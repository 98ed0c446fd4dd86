package loguru

import "testing"

func TestCaptureCallSite(t *testing.T) {
	site := captureCallSite(0)
	if !site.ok {
		t.Fatal("captureCallSite(0) should succeed from a live goroutine")
	}
	if site.function != "captureCallSite" {
		t.Fatalf("function = %q, want captureCallSite", site.function)
	}
	if site.fileName != "caller.go" {
		t.Fatalf("fileName = %q, want caller.go", site.fileName)
	}
	if site.module != "caller" {
		t.Fatalf("module = %q, want caller", site.module)
	}
}

func TestSplitFuncName(t *testing.T) {
	cases := []struct {
		in       string
		wantPkg  string
		wantFunc string
	}{
		{"github.com/coreglow/loguru.(*Logger).log", "github.com/coreglow/loguru", "log"},
		{"github.com/coreglow/loguru.captureCallSite", "github.com/coreglow/loguru", "captureCallSite"},
		{"main.main", "main", "main"},
	}
	for _, c := range cases {
		pkg, fn := splitFuncName(c.in)
		if pkg != c.wantPkg || fn != c.wantFunc {
			t.Fatalf("splitFuncName(%q) = (%q, %q), want (%q, %q)", c.in, pkg, fn, c.wantPkg, c.wantFunc)
		}
	}
}

func TestGoroutineID(t *testing.T) {
	if goroutineID() <= 0 {
		t.Fatal("goroutineID should return a positive id for the current goroutine")
	}
}
