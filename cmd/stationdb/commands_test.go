package main

import (
	"testing"

	"github.com/hypermaq/stationdb"
)

func TestParseTableRange(t *testing.T) {
	cases := []struct {
		arg  string
		want stationdb.TableRange
	}{
		{"logs", stationdb.TableRange{Table: "logs"}},
		{"logs:100", stationdb.TableRange{Table: "logs", Start: 100}},
		{"logs:100:200", stationdb.TableRange{Table: "logs", Start: 100, Stop: 200}},
		{"measurements::50", stationdb.TableRange{Table: "measurements", Stop: 50}},
	}

	for _, tc := range cases {
		got, err := parseTableRange(tc.arg)
		if err != nil {
			t.Errorf("parseTableRange(%q) returned error: %v", tc.arg, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseTableRange(%q) = %+v, want %+v", tc.arg, got, tc.want)
		}
	}
}

func TestParseTableRangeInvalid(t *testing.T) {
	for _, arg := range []string{"logs:abc", "logs:1:2:3", "logs:1:x"} {
		if _, err := parseTableRange(arg); err == nil {
			t.Errorf("parseTableRange(%q) should fail", arg)
		}
	}
}
