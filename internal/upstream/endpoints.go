package upstream

import "github.com/complyops/backoffice/internal/reconcile"

// The payroll system exposes employees; the LMS exposes trainers,
// students, and enrollments. Paths and id fields are fixed by the
// upstream vendors.

func PayrollEmployees(c *Client) reconcile.Source {
	return c.Source("/api/v1/employees", "employeeId")
}

func LMSTrainers(c *Client) reconcile.Source {
	return c.Source("/api/trainers", "id")
}

func LMSStudents(c *Client) reconcile.Source {
	return c.Source("/api/students", "id")
}

func LMSEnrollments(c *Client) reconcile.Source {
	return c.Source("/api/enrolments", "id")
}
