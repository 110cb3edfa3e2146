// Package result holds query results and converts them into the output formats
// callers can request.
//
// A QueryResult is produced by Scan from driver rows and can be shaped as:
//
//   - frame (alias pandas): a column-major *Frame
//   - arrow: an arrow.Record built with github.com/apache/arrow-go
//   - csv: comma separated text with a header row
//   - list: []map[string]any, one record per row
//
// Example:
//
//	res, err := result.Scan(rows)
//	if err != nil {
//		return err
//	}
//
//	out, err := res.Format(result.FormatList)
package result
