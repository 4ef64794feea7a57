// Package expectations turns a schema document into executable data-quality
// checks and runs them against tables.
//
// BuildSuite derives one Expectation per column field with runtime meaning,
// plus an existence check per column. Expectation names follow the Great
// Expectations vocabulary (expect_column_values_to_be_in_set and so on).
//
// # Basic Usage
//
//	suite, err := expectations.CreateSuiteFromTOML("schemas/returns.toml", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table, err := dataset.LoadCSV("returns.csv", dataset.CSVOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := expectations.NewRunner().Run(ctx, table, suite)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(expectations.Format(result))
//
// Null cells are excluded from value-wise expectations; only
// expect_column_values_to_not_be_null counts them. Failed results carry
// Details with element counts and a sample of unexpected values.
package expectations
