// internal/scenario/checks_test.go
package scenario

import "testing"

type call struct {
	name   string
	passed bool
}

type fakeRecorder struct {
	calls []call
}

func (f *fakeRecorder) Record(name string, passed bool) {
	f.calls = append(f.calls, call{name: name, passed: passed})
}

func (f *fakeRecorder) result(name string) (bool, bool) {
	for _, c := range f.calls {
		if c.name == name {
			return c.passed, true
		}
	}
	return false, false
}

var foo = RouteTarget{Hostname: "foo.localhost", Expected: "foo"}
var bar = RouteTarget{Hostname: "bar.localhost", Expected: "bar"}

func TestResponseIsCorrect_TrailingNewline(t *testing.T) {
	if !ResponseIsCorrect(Outcome{Status: 200, Body: "foo\n"}, foo) {
		t.Fatalf("expected %q to match foo", "foo\n")
	}
}

func TestResponseIsCorrect_WrongBackend(t *testing.T) {
	if ResponseIsCorrect(Outcome{Status: 200, Body: "foo\n"}, bar) {
		t.Fatalf("expected %q not to match bar", "foo\n")
	}
}

func TestResponseIsCorrect_EmptyBody(t *testing.T) {
	if ResponseIsCorrect(Outcome{Status: 200, Body: ""}, foo) {
		t.Fatalf("expected empty body to fail")
	}
}

func TestResponseIsCorrect_NoNewline(t *testing.T) {
	if !ResponseIsCorrect(Outcome{Status: 200, Body: "foo"}, foo) {
		t.Fatalf("expected %q to match foo", "foo")
	}
}

func TestResponseIsCorrect_SurroundingWhitespace(t *testing.T) {
	if !ResponseIsCorrect(Outcome{Status: 200, Body: " \tfoo\r\n"}, foo) {
		t.Fatalf("expected whitespace to be trimmed")
	}
}

func TestStatusIs200(t *testing.T) {
	if !StatusIs200(Outcome{Status: 200}) {
		t.Fatalf("200 should pass")
	}
	for _, code := range []int{0, 201, 404, 502} {
		if StatusIs200(Outcome{Status: code}) {
			t.Fatalf("%d should fail", code)
		}
	}
}

func TestEvaluate_RecordsBothWithoutShortCircuit(t *testing.T) {
	rec := &fakeRecorder{}

	statusOK, bodyOK := Evaluate(rec, Outcome{Status: 503, Body: "foo\n"}, foo)

	if statusOK {
		t.Fatalf("status check should fail on 503")
	}
	if !bodyOK {
		t.Fatalf("body check should still run and pass")
	}
	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 recorded checks, got %d", len(rec.calls))
	}
	if rec.calls[0].name != CheckStatus200 || rec.calls[1].name != CheckResponseCorrect {
		t.Fatalf("unexpected check order: %+v", rec.calls)
	}
}

func TestRecorderFunc(t *testing.T) {
	var got []string
	rec := RecorderFunc(func(name string, passed bool) {
		got = append(got, name)
	})

	Evaluate(rec, Outcome{}, foo)

	if len(got) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(got))
	}
}
