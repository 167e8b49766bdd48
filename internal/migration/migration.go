// Package migration creates the schema on startup so the service is usable
// out of the box for local and self-hosted environments.
package migration

import (
	authdomain "github.com/talentsift/talentsift/internal/auth/domain"
	creditdomain "github.com/talentsift/talentsift/internal/credit/domain"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	sharelinkdomain "github.com/talentsift/talentsift/internal/sharelink/domain"
	subscriptiondomain "github.com/talentsift/talentsift/internal/subscription/domain"
	"gorm.io/gorm"
)

func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&orgdomain.Organization{},
		&orgdomain.OrganizationMember{},
		&subscriptiondomain.Subscription{},
		&creditdomain.CreditBalance{},
		&creditdomain.CreditTransaction{},
		&searchdomain.Search{},
		&searchdomain.SearchCandidate{},
		&searchdomain.CandidateScore{},
		&sharelinkdomain.ShareLink{},
	)
}
