package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2024-03-01")
	if !ok || got.Format(DateLayout) != "2024-03-01" {
		t.Fatalf("unexpected date %v ok=%v", got, ok)
	}
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	if got := DaysAgo(now, 30).Format(DateLayout); got != "2024-01-31" {
		t.Fatalf("unexpected %s", got)
	}
}

func TestQueryParsing(t *testing.T) {
	if !ParseBoolDefault("TRUE", false) || ParseBoolDefault("0", true) || !ParseBoolDefault("maybe", true) {
		t.Fatalf("bool parsing mismatch")
	}
	if got := SplitCSV(" spy, ,qqq,"); len(got) != 2 || got[0] != "spy" || got[1] != "qqq" {
		t.Fatalf("unexpected split %v", got)
	}
}
