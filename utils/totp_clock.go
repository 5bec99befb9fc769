package utils

import "time"

// timeNow is swapped out in tests to pin the TOTP clock.
var timeNow = time.Now
