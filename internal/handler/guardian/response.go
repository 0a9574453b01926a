package guardian

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
)

type guardianResponse struct {
	ID                uuid.UUID                  `json:"id"`
	Relationship      model.GuardianRelationship `json:"relationship"`
	RelationshipNotes *string                    `json:"relationship_notes,omitempty"`
	IsPrimaryContact  bool                       `json:"is_primary_contact"`
	User              handler.UserResponse       `json:"user"`
}

func newGuardianResponse(g *model.GuardianWithUser) guardianResponse {
	return guardianResponse{
		ID:                g.ID,
		Relationship:      g.Relationship,
		RelationshipNotes: g.RelationshipNotes,
		IsPrimaryContact:  g.IsPrimaryContact,
		User:              handler.NewUserResponse(&g.User),
	}
}

func newGuardianList(rows []*model.GuardianWithUser) []guardianResponse {
	out := make([]guardianResponse, 0, len(rows))
	for _, g := range rows {
		out = append(out, newGuardianResponse(g))
	}
	return out
}
