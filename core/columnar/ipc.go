package columnar

import (
	"io"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
)

// WriteIPC writes records to w as an Arrow IPC stream. Every record must
// share the schema of the first.
func WriteIPC(w io.Writer, records ...arrow.Record) error {
	if len(records) == 0 {
		return errors.NewValidation("records", "no records to write")
	}

	writer := ipc.NewWriter(w, ipc.WithSchema(records[0].Schema()))
	defer writer.Close()

	for i, rec := range records {
		if err := writer.Write(rec); err != nil {
			return errors.Wrapf(err, "failed to write record %d", i)
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "failed to close writer")
	}
	return nil
}

// ReadIPC reads every record of an Arrow IPC stream. The caller releases
// the records.
func ReadIPC(r io.Reader) ([]arrow.Record, error) {
	reader, err := ipc.NewReader(r)
	if err != nil {
		return nil, &errors.ParseError{Format: "arrow", Message: err.Error(), Err: err}
	}
	defer reader.Release()

	var records []arrow.Record
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := reader.Err(); err != nil {
		for _, rec := range records {
			rec.Release()
		}
		return nil, &errors.ParseError{Format: "arrow", Message: err.Error(), Err: err}
	}
	return records, nil
}
