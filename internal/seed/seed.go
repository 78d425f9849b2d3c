package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"doccontrol/internal/core"
	"doccontrol/pkg/types"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoData []byte

type demoFile struct {
	Organizations []orgSeed `yaml:"organizations"`
}

type orgSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Admin       struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
	} `yaml:"admin"`
	Projects []string `yaml:"projects"`

	// Documents are uploaded into the first project.
	Documents []docSeed `yaml:"documents"`
}

type docSeed struct {
	DocNumber string `yaml:"doc_number"`
	Title     string `yaml:"title"`
	DocType   string `yaml:"doc_type"`
	Status    string `yaml:"status"`
	Revision  string `yaml:"revision"`
	Body      string `yaml:"body"`
}

func loadDemo() ([]orgSeed, error) {
	var f demoFile
	if err := yaml.Unmarshal(demoData, &f); err != nil {
		return nil, fmt.Errorf("failed to parse demo data: %w", err)
	}
	return f.Organizations, nil
}

// DemoPassword is the password given to every seeded organization admin.
const DemoPassword = "password"

// Bootstrap ensures the default superadmin exists and returns it.
func Bootstrap(ctx context.Context, svc *core.Service, email, password string, logger *logrus.Logger) (*types.User, error) {
	created, err := svc.Bootstrap(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap superadmin: %w", err)
	}
	if !created {
		logger.Info("users already exist, skipping superadmin bootstrap")
	}

	admin, err := svc.Authenticate(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate bootstrap superadmin: %w", err)
	}

	return admin, nil
}

// Demo creates the organizations in demo.yaml with an org admin, projects and
// documents for each. Organizations that already exist are left alone.
func Demo(ctx context.Context, svc *core.Service, superadmin core.Actor, logger *logrus.Logger) error {
	orgs, err := loadDemo()
	if err != nil {
		return err
	}

	for _, seed := range orgs {
		orgID, err := svc.CreateOrganization(ctx, superadmin, seed.Name, seed.Description)
		if errors.Is(err, types.ErrConflict) {
			logger.WithField("name", seed.Name).Info("organization exists, skipping")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed organization %s: %w", seed.Name, err)
		}

		_, err = svc.CreateUser(ctx, superadmin, core.NewUser{
			Email:    seed.Admin.Email,
			Password: DemoPassword,
			Name:     seed.Admin.Name,
			Role:     types.RoleOrgAdmin,
			OrgID:    orgID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed admin for %s: %w", seed.Name, err)
		}

		var projectIDs []string
		for _, name := range seed.Projects {
			projectID, err := svc.CreateProject(ctx, superadmin, orgID, name, "")
			if err != nil {
				return fmt.Errorf("failed to seed project %s: %w", name, err)
			}
			projectIDs = append(projectIDs, projectID)
		}

		if len(seed.Documents) > 0 && len(projectIDs) == 0 {
			return fmt.Errorf("organization %s has documents but no project", seed.Name)
		}

		for _, doc := range seed.Documents {
			_, err := svc.Upload(ctx, superadmin, core.UploadInput{
				NewDocument: core.NewDocument{
					DocNumber:     doc.DocNumber,
					Title:         doc.Title,
					DocType:       doc.DocType,
					Status:        doc.Status,
					OrgID:         orgID,
					ProjectID:     projectIDs[0],
					RevisionLabel: doc.Revision,
				},
				FileName:    strings.ToLower(doc.DocNumber) + ".txt",
				ContentType: "text/plain",
			}, strings.NewReader(doc.Body))
			if err != nil {
				return fmt.Errorf("failed to seed document %s: %w", doc.DocNumber, err)
			}
		}

		logger.WithFields(logrus.Fields{
			"name":      seed.Name,
			"projects":  len(projectIDs),
			"documents": len(seed.Documents),
		}).Info("seeded organization")
	}

	return nil
}
