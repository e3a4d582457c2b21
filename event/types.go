package event

// Catalogue of event types dispatched on the bus. The dot-namespaced string is
// the dispatch key subscribers register against.
const (
	TypeEmployeeCreated           = "employee.created"
	TypeEmployeeUpdated           = "employee.updated"
	TypeEmployeeDeactivated       = "employee.deactivated"
	TypeEmployeeRoleChanged       = "employee.role_changed"
	TypeEmployeeDepartmentChanged = "employee.department_changed"

	TypeSurveyCreated            = "survey.survey_created"
	TypeSurveyUpdated            = "survey.survey_updated"
	TypeSurveyPublished          = "survey.survey_published"
	TypeSurveyDeleted            = "survey.survey_deleted"
	TypeSurveyResponseSubmitted  = "survey.response_submitted"
	TypeSurveyAnalyticsGenerated = "survey.analytics_generated"
)
