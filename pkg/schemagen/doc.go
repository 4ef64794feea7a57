// Package schemagen drafts a schema document from a sample table.
//
// Infer looks at the non-null values of each column and picks the narrowest
// data_type that fits: integers and floats with their observed bounds,
// datetimes recognised by round-tripping a candidate date_format, booleans,
// low-cardinality text as category with possible_values, and str otherwise.
// Zero-padded codes such as "002" stay textual.
//
// Write renders the draft as TOML that the schema parser reads back:
//
//	table, err := dataset.LoadCSV("returns.csv", dataset.CSVOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := schemagen.Infer(table, schemagen.Options{})
//	if err := schemagen.Write(os.Stdout, doc); err != nil {
//	    log.Fatal(err)
//	}
//
// Descriptions are placeholders; a drafted schema is a starting point for
// review, not a finished contract.
package schemagen
