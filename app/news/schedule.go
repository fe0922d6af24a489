package news

import (
	"time"
)

// KSTOffset emulates the site's fixed Asia/Seoul reference time. Timestamps
// entered in the admin editor are KST wall-clock values stored as-is, so
// visibility comparisons shift "now" forward instead of converting the
// stored value.
const KSTOffset = 9 * time.Hour

// ReferenceNow returns the fixed-offset reference time used when comparing
// against stored publish timestamps.
func ReferenceNow(now time.Time) time.Time {
	return now.Add(KSTOffset)
}

// IsScheduled reports whether an article is still waiting for its publish
// time. An article publishing exactly at the reference time is live.
func IsScheduled(publishedAt, now time.Time) bool {
	return publishedAt.After(ReferenceNow(now))
}
