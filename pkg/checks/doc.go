// Package checks provides the registry behind the custom_check schema field.
//
// A schema names a check by string:
//
//	[period]
//	data_type = "int64"
//	custom_check = "is_yyyymm_period"
//
// The name must be registered ahead of time; schemas never carry code.
// Validation rejects unknown names, and the expectation runner applies the
// registered function to every non-null value of the column.
//
//	reg := checks.Default()
//	reg.MustRegister("is_even", "Even integer", func(v any) bool {
//	    n, ok := values.Int(v)
//	    return ok && n%2 == 0
//	})
package checks
