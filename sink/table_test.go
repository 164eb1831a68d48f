package sink

import (
	"testing"
	"time"
)

func TestTableRetention(t *testing.T) {
	tbl := NewTable(100, "price")
	base := time.Now()
	for i := 0; i < 150; i++ {
		tbl.Append("price", float64(i), base.Add(time.Duration(i)*time.Millisecond))
	}
	if tbl.Len("price") != 100 {
		t.Fatalf("expected retention 100, got %d", tbl.Len("price"))
	}
	s := tbl.Series("price")
	if s[0].Value != 50 || s[99].Value != 149 {
		t.Fatalf("expected newest 100 kept, got [%v..%v]", s[0].Value, s[99].Value)
	}
}

func TestTableDefaultRetention(t *testing.T) {
	tbl := NewTable(0, "price")
	for i := 0; i < DefaultRetention+1; i++ {
		tbl.Append("price", float64(i), time.Now())
	}
	if tbl.Len("price") != DefaultRetention {
		t.Fatalf("expected default retention %d, got %d", DefaultRetention, tbl.Len("price"))
	}
}

func TestTableSchemaFiltering(t *testing.T) {
	tbl := NewTable(10, "price")
	if tbl.HasKey("volume") {
		t.Fatalf("volume not in schema")
	}
	tbl.Append("volume", 1, time.Now())
	if tbl.Len("volume") != 0 {
		t.Fatalf("append outside schema must be dropped")
	}
}

func TestTableReset(t *testing.T) {
	tbl := NewTable(10, "a", "b")
	tbl.Append("a", 1, time.Now())
	tbl.Append("b", 2, time.Now())

	tbl.Reset("a")
	if tbl.Len("a") != 0 || tbl.Len("b") != 1 {
		t.Fatalf("partial reset wrong: a=%d b=%d", tbl.Len("a"), tbl.Len("b"))
	}

	tbl.Reset()
	if tbl.Len("b") != 0 {
		t.Fatalf("full reset wrong: b=%d", tbl.Len("b"))
	}
}

func TestTableSeriesIsCopy(t *testing.T) {
	tbl := NewTable(10, "a")
	tbl.Append("a", 1, time.Now())
	s := tbl.Series("a")
	s[0].Value = 99
	if tbl.Series("a")[0].Value != 1 {
		t.Fatalf("Series must return a copy")
	}
}
