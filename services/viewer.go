package services

import "github.com/google/uuid"

// Viewer identifies the actor behind a catalog or checkout request.
// Handlers build it from the auth context; the services never read
// ambient request state themselves.
type Viewer struct {
	UserID        uuid.UUID
	Authenticated bool
}

func Anonymous() Viewer {
	return Viewer{}
}

func AuthenticatedViewer(userID uuid.UUID) Viewer {
	return Viewer{UserID: userID, Authenticated: true}
}
