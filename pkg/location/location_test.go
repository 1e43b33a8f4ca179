package location

import (
	"math"
	"strings"
	"testing"

	"github.com/devmap/devmap/pkg/errors"
)

const countriesTSV = "country\tcount\tlogfollowers\tsqrtfollowers\tsumfollowers\tpopulation\tgdp\n" +
	"United States\t1000\t2500.5\t900\t50000\t323000000\t18600000000000\n" +
	"Germany\t300\t700\t250\t9000\t82000000\t3470000000000\n" +
	"Atlantis\t2\t1\t1\t3\t0\t0\n"

const citiesTSV = "country\tstate\tcity\tcount\tlogfollowers\tsqrtfollowers\tsumfollowers\n" +
	"United States\tCalifornia\tSan Francisco\t400\t900\t300\t20000\n" +
	"Germany\tNone\tBerlin\t120\t200\t80\t3000\n"

func TestReadTSVCountries(t *testing.T) {
	locs, err := ReadTSV(strings.NewReader(countriesTSV))
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}
	if len(locs) != 3 {
		t.Fatalf("got %d locations, want 3", len(locs))
	}

	us := locs[0]
	if us.Country != "United States" || us.Count != 1000 || us.Followers != 50000 {
		t.Errorf("unexpected record: %+v", us)
	}
	if us.SqrtFollowers != 900 {
		t.Errorf("SqrtFollowers = %v, want 900", us.SqrtFollowers)
	}
	if got, want := us.AccountsPer1M, 1000/323000000.0*1e6; math.Abs(got-want) > 1e-9 {
		t.Errorf("AccountsPer1M = %v, want %v", got, want)
	}
	if got, want := us.AccountsPer1BGDP, 1000/18600000000000.0*1e9; math.Abs(got-want) > 1e-12 {
		t.Errorf("AccountsPer1BGDP = %v, want %v", got, want)
	}

	atlantis := locs[2]
	if atlantis.AccountsPer1M != 0 || atlantis.AccountsPer1BGDP != 0 {
		t.Errorf("zero denominators should leave derived metrics at zero: %+v", atlantis)
	}
	if atlantis.Ranks != nil {
		t.Error("ranks should be nil before ranking")
	}
}

func TestReadTSVCities(t *testing.T) {
	locs, err := ReadTSV(strings.NewReader(citiesTSV))
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("got %d locations, want 2", len(locs))
	}
	if locs[0].City != "San Francisco" || locs[0].State != "California" {
		t.Errorf("unexpected city record: %+v", locs[0])
	}
	if locs[1].State != "" {
		t.Errorf("None state should read as empty, got %q", locs[1].State)
	}
	if locs[1].Name() != "Berlin" {
		t.Errorf("Name() = %q, want Berlin", locs[1].Name())
	}
}

func TestReadTSVErrors(t *testing.T) {
	if _, err := ReadTSV(strings.NewReader("city\tcount\nX\t1\n")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("missing country column: got %v", err)
	}
	if _, err := ReadTSV(strings.NewReader("country\tcount\nX\tmany\n")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad number: got %v", err)
	}
	for _, cell := range []string{"NaN", "nan", "Inf", "-Inf", "+infinity"} {
		_, err := ReadTSV(strings.NewReader("country\tcount\nX\t" + cell + "\nY\t" + cell + "\n"))
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("non-finite count %q: got %v", cell, err)
		}
	}
	if _, err := ReadFollowerDistribution(strings.NewReader("country\tfollowers\tcount\nX\t10\tNaN\n")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("non-finite follower count: got %v", err)
	}
	locs, err := ReadTSV(strings.NewReader(""))
	if err != nil || len(locs) != 0 {
		t.Errorf("empty input should yield empty dataset, got %v, %v", locs, err)
	}
}

func TestReadTSVFileMissing(t *testing.T) {
	_, err := ReadTSVFile("does-not-exist.tsv")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestParseMetric(t *testing.T) {
	for _, m := range Metrics {
		got, err := ParseMetric(strings.ToUpper(string(m)))
		if err != nil || got != m {
			t.Errorf("ParseMetric(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseMetric("stars"); !errors.Is(err, errors.ErrCodeInvalidMetric) {
		t.Errorf("expected INVALID_METRIC, got %v", err)
	}
}

func TestValueCoversAllMetrics(t *testing.T) {
	l := &Location{Count: 1, LogFollowers: 2, Followers: 3, AccountsPer1M: 4, AccountsPer1BGDP: 5, Population: 6, GDP: 7}
	for i, m := range Metrics {
		if got := l.Value(m); got != float64(i+1) {
			t.Errorf("Value(%s) = %v, want %d", m, got, i+1)
		}
		if !m.Valid() || m.Label() == string(m) {
			t.Errorf("metric %s should be valid and labelled", m)
		}
	}
	if l.Value("stars") != 0 {
		t.Error("unknown metric should read as zero")
	}
}

func TestClone(t *testing.T) {
	l := &Location{Country: "France", Ranks: map[Metric]int{Count: 3}}
	c := l.Clone()
	c.Ranks[Count] = 9
	c.Country = "Spain"
	if l.Ranks[Count] != 3 || l.Country != "France" {
		t.Error("Clone should not share state")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("Cities"); err != nil || k != KindCities {
		t.Errorf("ParseKind(Cities) = %v, %v", k, err)
	}
	if k, err := ParseKind(""); err != nil || k != KindCountries {
		t.Errorf("ParseKind(\"\") = %v, %v", k, err)
	}
	if _, err := ParseKind("planets"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
