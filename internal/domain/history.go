package domain

// Exchange is one answered question as shown in the history sidebar.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
