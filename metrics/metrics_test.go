package metrics

import "testing"

func TestRecordRunDoesNotPanic(t *testing.T) {
	RecordRun(16, 512, 3, 1, 2, 6.5e6)
	RecordRun(16, 512, 0, 0, 0, 7.1e6)
}
