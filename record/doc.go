/*
Package record implements the generic part of reading and writing one DXF
record: the rule tables that route group codes to fields, the decode loop,
and the staged, version-gated encoder.

A schema describes its fields as rules bound to the fields of a scratch
value:

	tbl := record.NewTable(r.Version(),
		record.Bind(8, &p.Layer),
		record.Bind(38, &p.Elevation).Until(dwire.R11),
		record.Bind(92, &p.GraphicsDataSize).Nth(1),
		record.Bind(92, &p.Columns).Nth(2),
		record.Bind(310, &p.GraphicsData).Limit(record.MaxParams),
		record.Markers("AcDbEntity", "AcDbPolyline"),
	)
	dec := record.NewDecoder(r, "POLYLINE")
	if err := dec.Loop(tbl); err != nil {
		return err
	}

Rules that do not apply to the declared version are dropped when the table
is built, so the same code can be routed to different fields in different
versions. Occurrence counters belong to the table, which is created once per
record.

Encoding stages every tag in memory and only writes when Flush is called
without an earlier hard error, so a failed precondition never produces a
partial record.
*/
package record
