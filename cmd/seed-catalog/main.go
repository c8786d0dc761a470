// seed-catalog loads the static reference data the API expects: roles, the
// document-type catalog and a starter set of course offerings. Safe to re-run;
// existing rows are left alone.
package main

import (
	"log"
	"time"

	"student-application-api/config"
	"student-application-api/models"

	"github.com/joho/godotenv"
)

var roles = []models.Role{
	{RoleID: models.RoleAgent, Role: "agent"},
	{RoleID: models.RoleStaff, Role: "staff"},
	{RoleID: models.RoleStudent, Role: "student"},
	{RoleID: models.RoleAdmin, Role: "admin"},
}

var documentTypes = []models.DocumentType{
	{Code: "passport", DocumentTypeName: "Passport bio page", Mandatory: true, OCREligible: true, DocumentOrder: 1},
	{Code: "transcript", DocumentTypeName: "Academic transcript", Mandatory: true, OCREligible: true, DocumentOrder: 2},
	{Code: "english-test", DocumentTypeName: "English test result", Mandatory: true, OCREligible: true, DocumentOrder: 3},
	{Code: "financial-evidence", DocumentTypeName: "Financial evidence", Mandatory: true, OCREligible: false, DocumentOrder: 4},
	{Code: "health-cover", DocumentTypeName: "Health cover certificate", Mandatory: true, OCREligible: false, DocumentOrder: 5},
	{Code: "portfolio", DocumentTypeName: "Portfolio / supporting work", Mandatory: false, OCREligible: false, DocumentOrder: 6},
	{Code: "statement-of-purpose", DocumentTypeName: "Statement of purpose", Mandatory: false, OCREligible: false, DocumentOrder: 7},
}

var courseOfferings = []models.CourseOffering{
	{CourseCode: "BIT", CourseName: "Bachelor of Information Technology", CampusName: "City", IsActive: true},
	{CourseCode: "MBA", CourseName: "Master of Business Administration", CampusName: "City", IsActive: true},
	{CourseCode: "DHSC", CourseName: "Diploma of Health Science", CampusName: "North", IsActive: true},
	{CourseCode: "CERT4-COOK", CourseName: "Certificate IV in Commercial Cookery", CampusName: "North", IsActive: true},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	now := time.Now()

	for _, role := range roles {
		var existing models.Role
		if err := config.DB.Where("role_id = ?", role.RoleID).First(&existing).Error; err == nil {
			continue
		}
		role.CreateAt = &now
		role.UpdateAt = &now
		if err := config.DB.Create(&role).Error; err != nil {
			log.Fatalf("Failed to seed role %s: %v", role.Role, err)
		}
		log.Printf("Seeded role %s", role.Role)
	}

	for _, docType := range documentTypes {
		var existing models.DocumentType
		if err := config.DB.Where("code = ?", docType.Code).First(&existing).Error; err == nil {
			continue
		}
		docType.CreateAt = &now
		docType.UpdateAt = &now
		if err := config.DB.Create(&docType).Error; err != nil {
			log.Fatalf("Failed to seed document type %s: %v", docType.Code, err)
		}
		log.Printf("Seeded document type %s", docType.Code)
	}

	for _, offering := range courseOfferings {
		var existing models.CourseOffering
		if err := config.DB.Where("course_code = ?", offering.CourseCode).First(&existing).Error; err == nil {
			continue
		}
		offering.CreateAt = &now
		offering.UpdateAt = &now
		if err := config.DB.Create(&offering).Error; err != nil {
			log.Fatalf("Failed to seed course offering %s: %v", offering.CourseCode, err)
		}
		log.Printf("Seeded course offering %s", offering.CourseCode)
	}

	log.Println("Catalog seed complete")
}
