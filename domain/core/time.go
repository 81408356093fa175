package core

import (
	"time"
)

// ReportTimestampLayout renders report file name prefixes as YYYY_MM_DD HH_MM_SS
const ReportTimestampLayout = "2006_01_02 15_04_05"

// Clock returns the current time; services take one so tests can pin it
type Clock func() time.Time

// SystemClock is the wall clock in local time
func SystemClock() time.Time {
	return time.Now()
}

// FormatReportTimestamp renders t with ReportTimestampLayout
func FormatReportTimestamp(t time.Time) string {
	return t.Format(ReportTimestampLayout)
}
