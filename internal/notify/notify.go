// Package notify delivers guardian notifications over a mail transport.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/attendance-backend/internal/model"
)

// ErrDelivery wraps every transport failure so callers can match it with errors.Is.
var ErrDelivery = errors.New("notification delivery failed")

// Dispatcher sends a single email synchronously. There is no retry and no queue:
// a transport failure is returned to the caller as-is (wrapped in ErrDelivery).
type Dispatcher interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// AbsenceMessage builds the guardian email for a student marked absent on date.
func AbsenceMessage(student *model.Student, date time.Time, school string) (subject, body string) {
	day := date.Format("Monday, 2 January 2006")
	subject = fmt.Sprintf("Absence notice: %s", student.Name)
	body = fmt.Sprintf(
		"Dear Parent/Guardian,\n\n"+
			"This is to inform you that %s (ID %s, class %s) was marked absent on %s.\n"+
			"If you believe this is a mistake, please contact the class teacher.\n\n"+
			"Regards,\n%s",
		student.Name, student.StudentID, student.Class, day, school,
	)
	return subject, body
}

func validate(to, subject, body string) error {
	if to == "" || subject == "" || body == "" {
		return fmt.Errorf("%w: recipient, subject and body are required", ErrDelivery)
	}
	return nil
}
