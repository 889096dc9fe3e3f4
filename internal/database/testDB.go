package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "jobpath-backend/internal/model"
	"jobpath-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users & profiles
var (
	TestAdminUser      m.User
	TestUserCandidate1 m.User
	TestUserCandidate2 m.User
	TestUserEmployer1  m.User
	TestUserEmployer2  m.User
	TestCandidate1     m.CandidateUser
	TestCandidate2     m.CandidateUser
	TestCompany1       m.CompanyUser
	TestCompany2       m.CompanyUser

	// Shared plain password for every seeded account
	TestSeedPassword = "SeedPass123!"

	// Exported seeded job posts
	TestJobPost1 m.JobPost
	TestJobPost2 m.JobPost
	TestJobPost3 m.JobPost

	// Exported seeded CV records (both owned by candidate 1)
	TestCV1 m.CVRecord
	TestCV2 m.CVRecord
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	// Seed sample candidates, employers, job posts and CVs
	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample candidate and employer records (2 each) if empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	// Ignore admin user that got create during NewDBInstance
	if userCount > 1 {
		return loadTestData(db)
	}

	tels := []*string{ptr("0100000001"), ptr("0100000002"), ptr("0200000001"), ptr("0200000002"), ptr("0300000001")}
	emails := []*string{ptr("candidate1@example.com"), ptr("candidate2@example.com"), ptr("employer1@example.com"), ptr("employer2@example.com"), ptr("admin@example.com")}
	userSpecs := []struct {
		username string
		email    *string
		tel      *string
		role     string
	}{
		{"candidate_1", emails[0], tels[0], m.RoleCandidate},
		{"candidate_2", emails[1], tels[1], m.RoleCandidate},
		{"employer_1", emails[2], tels[2], m.RoleEmployer},
		{"employer_2", emails[3], tels[3], m.RoleEmployer},
		{"admin_user", emails[4], tels[4], m.RoleAdmin},
	}

	// Pre-hash shared password for all seeded users
	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			ContactInfo: m.ContactInfo{
				Email: s.email,
				Tel:   s.tel,
			},
			Role:     s.role,
			Password: hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	// Map created users to exported variables
	for _, u := range users {
		switch u.Username {
		case "candidate_1":
			TestUserCandidate1 = u
		case "candidate_2":
			TestUserCandidate2 = u
		case "employer_1":
			TestUserEmployer1 = u
		case "employer_2":
			TestUserEmployer2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	sizeM, sizeL := "M", "L"

	candidateProfiles := []m.CandidateUser{
		{
			UserID: TestUserCandidate1.ID,
			EditableCandidateInfo: m.EditableCandidateInfo{
				FirstName: "Alice",
				LastName:  "Nguyen",
				Headline:  "Backend engineer",
				Skills:    pq.StringArray{"Go", "SQL"},
				SoftSkill: pq.StringArray{"Teamwork", "Communication"},
			},
		},
		{
			UserID: TestUserCandidate2.ID,
			EditableCandidateInfo: m.EditableCandidateInfo{
				FirstName: "Bob",
				LastName:  "Somsak",
				Headline:  "Data analyst",
				Skills:    pq.StringArray{"Python", "SQL"},
				SoftSkill: pq.StringArray{"Problem Solving", "Adaptability"},
			},
		},
	}
	if err := db.Create(&candidateProfiles).Error; err != nil {
		return err
	}

	companies := []m.CompanyUser{
		{
			UserID:         TestUserEmployer1.ID,
			VerifiedStatus: m.StatusVerified,
			EditableCompanyInfo: m.EditableCompanyInfo{
				Name:     "TechNova",
				Overview: "Innovative platform solutions",
				Industry: "Software",
				Size:     &sizeM,
			},
		},
		{
			UserID:         TestUserEmployer2.ID,
			VerifiedStatus: m.StatusPending,
			EditableCompanyInfo: m.EditableCompanyInfo{
				Name:     "DataForge",
				Overview: "Data analytics consulting",
				Industry: "Consulting",
				Size:     &sizeL,
			},
		},
	}
	if err := db.Create(&companies).Error; err != nil {
		return err
	}

	// Assign exported profile structs
	TestCandidate1 = candidateProfiles[0]
	TestCandidate2 = candidateProfiles[1]
	TestCompany1 = companies[0]
	TestCompany2 = companies[1]

	// Seed job posts (only if none exist yet)
	var jobPostCount int64
	if err := db.Model(&m.JobPost{}).Count(&jobPostCount).Error; err != nil {
		return err
	}
	if jobPostCount == 0 {
		exp1 := time.Now().AddDate(0, 1, 0)
		exp2 := time.Now().AddDate(0, 2, 0)
		exp3 := time.Now().AddDate(0, 3, 0)

		jobPosts := []m.JobPost{
			{
				CompanyUserID: TestCompany1.UserID,
				EditableJobPostInfo: m.EditableJobPostInfo{
					Title:    "Backend Engineer",
					Desc:     "Work on Go microservices and database layers.",
					Req:      "Go basics; SQL familiarity",
					ExpLvl:   "Junior",
					Location: "Bangkok (Hybrid)",
					Type:     "Full-time",
					Salary:   "45000 THB",
					Tags:     pq.StringArray{"go", "backend", "api"},
					Expiring: &exp1,
				},
			},
			{
				CompanyUserID: TestCompany1.UserID,
				EditableJobPostInfo: m.EditableJobPostInfo{
					Title:    "Frontend Developer",
					Desc:     "Assist building component library in React.",
					Req:      "JS/TS fundamentals",
					ExpLvl:   "Junior",
					Location: "Remote",
					Type:     "Full-time",
					Salary:   "40000 THB",
					Tags:     pq.StringArray{"react", "typescript", "ui"},
					Expiring: &exp2,
				},
			},
			{
				CompanyUserID: TestCompany2.UserID,
				EditableJobPostInfo: m.EditableJobPostInfo{
					Title:    "Data Analyst",
					Desc:     "Support data cleansing and dashboard creation.",
					Req:      "SQL; basic statistics",
					ExpLvl:   "Junior",
					Location: "Chiang Mai (On-site)",
					Type:     "Contract",
					Salary:   "38000 THB",
					Tags:     pq.StringArray{"data", "sql", "analytics"},
					Expiring: &exp3,
				},
			},
		}

		if err := db.Create(&jobPosts).Error; err != nil {
			return err
		}
		if len(jobPosts) > 0 {
			TestJobPost1 = jobPosts[0]
		}
		if len(jobPosts) > 1 {
			TestJobPost2 = jobPosts[1]
		}
		if len(jobPosts) > 2 {
			TestJobPost3 = jobPosts[2]
		}
	}

	// Seed CV records for candidate 1: a default template CV and an upload
	cvs := []m.CVRecord{
		{
			UserID: TestUserCandidate1.ID,
			Type:   m.CVTypeTemplate,
			Title:  "Backend CV",
			PersonalInfo: m.CVPersonalInfo{
				FullName: "Alice Nguyen",
				Email:    "candidate1@example.com",
				Summary:  "Backend engineer with Go experience",
			},
			Sections: m.CVSections{
				Education: []m.CVEducation{{School: "KU", Degree: "B.Eng", Field: "CPE", StartYear: "2019", EndYear: "2023"}},
			},
			Skills:    pq.StringArray{"Go", "SQL"},
			IsDefault: true,
		},
		{
			UserID:   TestUserCandidate1.ID,
			Type:     m.CVTypeUploaded,
			Title:    "Uploaded CV",
			FileURL:  "https://storage.example.com/cvs/alice.pdf",
			FileName: "alice.pdf",
		},
	}
	if err := db.Create(&cvs).Error; err != nil {
		return err
	}
	TestCV1 = cvs[0]
	TestCV2 = cvs[1]

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"candidate_1", "candidate_2", "employer_1", "employer_2",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "candidate_1":
			TestUserCandidate1 = u
		case "candidate_2":
			TestUserCandidate2 = u
		case "employer_1":
			TestUserEmployer1 = u
		case "employer_2":
			TestUserEmployer2 = u
		}
	}

	_ = db.First(&TestCandidate1, "user_id = ?", TestUserCandidate1.ID).Error
	_ = db.First(&TestCandidate2, "user_id = ?", TestUserCandidate2.ID).Error
	_ = db.First(&TestCompany1, "user_id = ?", TestUserEmployer1.ID).Error
	_ = db.First(&TestCompany2, "user_id = ?", TestUserEmployer2.ID).Error

	// Load first three job posts deterministically
	var posts []m.JobPost
	if err := db.Order("id ASC").Limit(3).Find(&posts).Error; err == nil {
		if len(posts) > 0 {
			TestJobPost1 = posts[0]
		}
		if len(posts) > 1 {
			TestJobPost2 = posts[1]
		}
		if len(posts) > 2 {
			TestJobPost3 = posts[2]
		}
	}

	var cvs []m.CVRecord
	if err := db.Where("user_id = ?", TestUserCandidate1.ID).Order("created_at ASC").Limit(2).Find(&cvs).Error; err == nil {
		if len(cvs) > 0 {
			TestCV1 = cvs[0]
		}
		if len(cvs) > 1 {
			TestCV2 = cvs[1]
		}
	}

	return nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
