// Package gnsstime converts GPS week/time-of-week pairs to UTC for
// display. QZSS runs on the GPS timescale, so the same conversion
// covers both.
package gnsstime

import "time"

// GPS-to-UTC leap second offset, current since 2017-01-01.
const LeapSeconds = 18

var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

const displayFormat = "2006-01-02 15:04:05"

// GPSToUTC converts a GPS week number and time-of-week in seconds to
// UTC.
func GPSToUTC(week uint16, tow uint32) time.Time {
	elapsed := time.Duration(week)*7*24*time.Hour +
		time.Duration(int64(tow)-LeapSeconds)*time.Second
	return gpsEpoch.Add(elapsed)
}

// Format renders GPSToUTC in the fixed YYYY-MM-DD hh:mm:ss form used
// in log output.
func Format(week uint16, tow uint32) string {
	return GPSToUTC(week, tow).Format(displayFormat)
}
