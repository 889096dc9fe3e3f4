// Command-line tool to delete bucket objects no longer referenced by any CV record.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"jobpath-backend/internal/controller/file"
	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"

	_ "github.com/joho/godotenv/autoload"
)

func main() {

	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		log.Fatal("GCS_BUCKET_NAME is not set, nothing to clean")
	}

	fmt.Printf("⚠️ WARNING: This command will DELETE every object in bucket %q that no CV record references.\n", bucket)
	fmt.Println("This action is irreversible. Do you want to continue? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	input = strings.TrimSpace(strings.ToLower(input))

	if input != "yes" {
		fmt.Println("Operation cancelled.")
		return
	}

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}

	storage, err := file.NewCloudStorageClient(bucket)
	if err != nil {
		log.Fatalf("Cloud storage failed to initialize: %v", err)
	}

	var referenced []string
	if err := db.Model(&model.CVRecord{}).Where("file_url <> ''").Pluck("file_url", &referenced).Error; err != nil {
		log.Fatalf("Failed to load CV file references: %v", err)
	}
	inUse := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		inUse[name] = true
	}

	objects, err := storage.ListObjects("cvs/")
	if err != nil {
		log.Fatalf("Failed to list bucket objects: %v", err)
	}

	deleted := 0
	for _, name := range objects {
		if inUse[name] {
			continue
		}
		if err := storage.DeleteObject(name); err != nil {
			log.Fatalf("Failed to delete %s: %v", name, err)
		}
		fmt.Printf("Deleted %s\n", name)
		deleted++
	}

	fmt.Printf("✅ Removed %d orphaned objects (%d still referenced).\n", deleted, len(inUse))
}
