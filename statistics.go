package containerof

import (
	"sync/atomic"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics is a snapshot of the package's ownership and borrow bookkeeping.
type Statistics struct {
	OwnedClaimed  int
	OwnedReleased int
	OwnedLeaked   int

	SharedBorrows    int
	ExclusiveBorrows int
	BorrowsDropped   int
}

func (s *Statistics) Clear() {
	s.OwnedClaimed = 0
	s.OwnedReleased = 0
	s.OwnedLeaked = 0
	s.SharedBorrows = 0
	s.ExclusiveBorrows = 0
	s.BorrowsDropped = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.OwnedClaimed += other.OwnedClaimed
	s.OwnedReleased += other.OwnedReleased
	s.OwnedLeaked += other.OwnedLeaked
	s.SharedBorrows += other.SharedBorrows
	s.ExclusiveBorrows += other.ExclusiveBorrows
	s.BorrowsDropped += other.BorrowsDropped
}

// OwnedLive is the number of Owned values that have been claimed and not yet released
// or reported as leaked.
func (s *Statistics) OwnedLive() int {
	return s.OwnedClaimed - s.OwnedReleased - s.OwnedLeaked
}

// JsonData populates a json object with the statistics
func (s *Statistics) JsonData(json *jwriter.ObjectState) {
	json.Name("OwnedClaimed").Int(s.OwnedClaimed)
	json.Name("OwnedReleased").Int(s.OwnedReleased)
	json.Name("OwnedLeaked").Int(s.OwnedLeaked)
	json.Name("OwnedLive").Int(s.OwnedLive())
	json.Name("SharedBorrows").Int(s.SharedBorrows)
	json.Name("ExclusiveBorrows").Int(s.ExclusiveBorrows)
	json.Name("BorrowsDropped").Int(s.BorrowsDropped)
}

type counters struct {
	ownedClaimed  atomic.Int64
	ownedReleased atomic.Int64
	ownedLeaked   atomic.Int64

	sharedBorrows    atomic.Int64
	exclusiveBorrows atomic.Int64
	borrowsDropped   atomic.Int64
}

var stats counters

// ReadStatistics returns a snapshot of the process-wide counters.
func ReadStatistics() Statistics {
	return Statistics{
		OwnedClaimed:     int(stats.ownedClaimed.Load()),
		OwnedReleased:    int(stats.ownedReleased.Load()),
		OwnedLeaked:      int(stats.ownedLeaked.Load()),
		SharedBorrows:    int(stats.sharedBorrows.Load()),
		ExclusiveBorrows: int(stats.exclusiveBorrows.Load()),
		BorrowsDropped:   int(stats.borrowsDropped.Load()),
	}
}

// BuildStatsString writes the process-wide counters and every live borrow lease to writer
// as a single json object.
func BuildStatsString(writer *jwriter.Writer) {
	s := ReadStatistics()

	obj := writer.Object()
	defer obj.End()

	totals := obj.Name("Totals").Object()
	s.JsonData(&totals)
	totals.End()

	leases := obj.Name("Borrows").Array()
	borrows.writeLeases(&leases)
	leases.End()
}
