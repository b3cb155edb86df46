package util

import "github.com/influxdata/influxdb-client-go/api/write"

// MockWriteAPI satisfies api.WriteAPI and discards everything. It is
// the default metrics sink when no InfluxDB endpoint is configured.
type MockWriteAPI struct{}

func (m *MockWriteAPI) WriteRecord(line string) {}

func (m *MockWriteAPI) WritePoint(point *write.Point) {}

func (m *MockWriteAPI) Flush() {}

func (m *MockWriteAPI) Close() {}

func (m *MockWriteAPI) Errors() <-chan error { return nil }
