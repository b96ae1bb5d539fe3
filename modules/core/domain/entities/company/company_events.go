package company

type CreatedEvent struct {
	Result *Company
}

type UpdatedEvent struct {
	Result *Company
}

type DeletedEvent struct {
	ID string
}
