package schedule

import "time"

var shortNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func WeekdayShortName(day time.Weekday) string {
	if day < time.Sunday || day > time.Saturday {
		return ""
	}

	return shortNames[day]
}
