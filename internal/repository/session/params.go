package session

type CreateStateParams struct {
	SessionId string
	State     State
}

type SetStateParams struct {
	SessionId string
	State     State
}

type AddWidgetParams struct {
	SessionId string
	WidgetId  string
	Role      string
}

type RemoveWidgetParams struct {
	SessionId string
	WidgetId  string
}
