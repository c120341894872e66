package utils

import (
	"log"
	"time"
)

// GetJSTLocation returns the Tokyo time zone used by the disclosure feeds.
func GetJSTLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

// TimeNowJST returns the current time in JST.
func TimeNowJST() time.Time {
	return time.Now().In(GetJSTLocation())
}
