// Package parser reads TOML schema files into ast.Documents.
//
// Every top-level key except data_asset becomes a Column, in the order it
// appears in the file. Field values are kept as decoded TOML values; type
// checking of field values is the validator's job, so a schema with
// `nullable = "yes"` parses fine and fails validation instead.
//
// Basic usage:
//
//	p := parser.NewParser()
//	doc, err := p.Parse("schemas/survey.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, col := range doc.Columns {
//	    fmt.Println(col.Name, col.DataType())
//	}
package parser
