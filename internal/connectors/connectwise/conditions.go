package connectwise

import (
	"fmt"
	"time"
)

// dateLayout is the date format ConnectWise accepts in conditions.
const dateLayout = "2006-01-02"

// ClosedDateConditions builds the conditions filter selecting tickets on
// a board closed within the inclusive [since, until] date window. The API
// filter itself is half-open, so the exclusive upper bound is the day
// after the requested end date.
func ClosedDateConditions(board string, since, until time.Time) string {
	nextDay := until.AddDate(0, 0, 1)
	return fmt.Sprintf("board/name='%s' and closedDate >= [%s] and closedDate < [%s]",
		board, since.Format(dateLayout), nextDay.Format(dateLayout))
}
