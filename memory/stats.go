package memory

type Stats struct {
	// bytes currently handed out
	Allocated int64
	Peak      int64

	Allocations int64
	Failures    int64
}
