package catalog

import "github.com/signalsfoundry/orbit-tracker/tle"

// fallbackRecords is the built-in element set returned when no network,
// cache, or persisted data is available. Elements are stale snapshots and
// only guarantee the tracker is never empty; their propagated positions
// drift with age.
var fallbackRecords = []tle.ElementRecord{
	{
		Name:  "ISS (ZARYA)",
		Line1: "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
		Line2: "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760",
	},
	{
		Name:  "NOAA 19",
		Line1: "1 33591U 09005A   25074.18988975  .00000419  00000+0  24768-3 0  9991",
		Line2: "2 33591  99.0072 138.3781 0012918 245.4492 114.5334 14.13308947829901",
	},
	{
		Name:  "GPS BIIR-2  (PRN 13)",
		Line1: "1 24876U 97035A   21275.50000000  .00000040  00000-0  00000-0 0  9992",
		Line2: "2 24876  55.4500 150.0000 0040000 100.0000 260.0000  2.00561000178000",
	},
	{
		Name:  "STARLINK-1007",
		Line1: "1 44713U 19074A   21275.50000000  .00001000  00000-0  70000-4 0  9993",
		Line2: "2 44713  53.0500 200.0000 0001500  90.0000 270.0000 15.06400000105000",
	},
	{
		Name:  "GSAT0201 (GALILEO 5)",
		Line1: "1 40128U 14050A   21275.50000000 -.00000060  00000-0  00000-0 0  9996",
		Line2: "2 40128  49.8500 120.0000 1610000 140.0000 230.0000  1.85519000048000",
	},
}

// FallbackRecords returns a copy of the built-in element set.
func FallbackRecords() []tle.ElementRecord {
	out := make([]tle.ElementRecord, len(fallbackRecords))
	copy(out, fallbackRecords)
	return out
}
