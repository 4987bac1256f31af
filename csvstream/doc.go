// Package csvstream generates CSV incrementally from a lazily produced sequence of rows.
//
// A [Stream] pulls one row from its [RowSource] per read, serializes it and hands the text to the consumer.
// The whole file is never held in memory, which makes it suitable for HTTP downloads of large exports:
//
//	rows := func() iter.Seq2[csvstream.Row, error] {
//		return func(yield func(csvstream.Row, error) bool) {
//			if !yield(csvstream.Row{"Name", "Age"}, nil) {
//				return
//			}
//			for u, err := range db.Users(ctx) {
//				if !yield(csvstream.Row{u.Name, u.Age}, err) {
//					return
//				}
//			}
//		}
//	}
//
//	s := csvstream.NewStream(rows, csvstream.Options{BOM: true})
//	defer s.Close()
//	_, err := io.Copy(w, s)
//
// # Format
//
// Fields are separated by "," and every row, including an empty one, ends with "\n".
// A field is wrapped in double quotes only when it contains a double quote, a comma or a newline,
// with embedded quotes doubled. Temporal fields are the exception and are always quoted, since long
// date formats such as "January 1, 2024" usually contain a comma.
//
// # Cells
//
// See [Row] for the accepted cell types. Numbers, booleans and dates go through the formatters
// configured in [Options]; the defaults produce plain decimals with at most three fraction digits,
// "true"/"false" and dates like "January 2, 2006".
//
// # Errors
//
// A failing row source ends the stream for good. There are no retries and no skipped rows.
// The error is reported through [Options.ReportError] and returned to the consumer on the same pull.
package csvstream
