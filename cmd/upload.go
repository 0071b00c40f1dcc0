package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/openpic/openpic/internal/client"
	"github.com/openpic/openpic/internal/fingerprint"
)

// uploadBatchSize keeps request bodies under the server's batch cap.
const uploadBatchSize = 500

var uploadCmd = &cobra.Command{
	Use:   "upload <folder-path> [folder-path...]",
	Short: "Upload event photos to the coordinator",
	Long: `Upload photos from one or more folders to a running coordinator.

Files are fingerprinted locally first; only content the coordinator has
never seen gets uploaded. Already-known photos are skipped without
transferring any bytes.

By default, only files in the specified folders are uploaded (non-recursive).
Use -r to search recursively in subdirectories.
Supported formats: jpg, jpeg, png, gif, heic, heif, webp

Example:
  openpic upload /path/to/photos
  openpic upload /path/to/folder1 /path/to/folder2
  openpic upload -r /path/to/photos  # recursive search`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolP("recursive", "r", false, "Search for photos recursively in subdirectories")
	uploadCmd.Flags().String("server", "http://localhost:8080", "Coordinator base URL")
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	supported := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".heic": true,
		".heif": true,
		".webp": true,
	}
	return supported[ext]
}

// collectImageFiles gathers image paths from the given folders.
func collectImageFiles(folderPaths []string, recursive bool) ([]string, error) {
	var filePaths []string
	for _, folderPath := range folderPaths {
		info, err := os.Stat(folderPath)
		if err != nil {
			return nil, fmt.Errorf("cannot access folder %s: %w", folderPath, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", folderPath)
		}

		if recursive {
			err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isImageFile(d.Name()) {
					filePaths = append(filePaths, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", folderPath, err)
			}
		} else {
			entries, err := os.ReadDir(folderPath)
			if err != nil {
				return nil, fmt.Errorf("cannot read folder %s: %w", folderPath, err)
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if isImageFile(entry.Name()) {
					filePaths = append(filePaths, filepath.Join(folderPath, entry.Name()))
				}
			}
		}
	}
	return filePaths, nil
}

func newUploadBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// fingerprintFiles hashes all files and returns fingerprint -> path.
// The same content appearing under multiple paths collapses to one entry.
func fingerprintFiles(filePaths []string) (map[string]string, []string) {
	byFingerprint := make(map[string]string, len(filePaths))
	var hashErrors []string

	bar := newUploadBar(len(filePaths), "Hashing")
	for _, path := range filePaths {
		data, err := os.ReadFile(path) //nolint:gosec // paths come from user-provided folders
		if err != nil {
			hashErrors = append(hashErrors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			bar.Add(1)
			continue
		}
		fp, err := fingerprint.Compute(data)
		if err != nil {
			hashErrors = append(hashErrors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			bar.Add(1)
			continue
		}
		if _, seen := byFingerprint[fp]; !seen {
			byFingerprint[fp] = path
		}
		bar.Add(1)
	}
	fmt.Println()
	return byFingerprint, hashErrors
}

// chunkHashes splits the fingerprint list into server-sized batches.
func chunkHashes(hashes []string) [][]string {
	var chunks [][]string
	for len(hashes) > 0 {
		n := min(uploadBatchSize, len(hashes))
		chunks = append(chunks, hashes[:n])
		hashes = hashes[n:]
	}
	return chunks
}

func runUpload(cmd *cobra.Command, args []string) error {
	recursive := mustGetBool(cmd, "recursive")
	serverURL := mustGetString(cmd, "server")
	ctx := cmd.Context()

	filePaths, err := collectImageFiles(args, recursive)
	if err != nil {
		return err
	}
	if len(filePaths) == 0 {
		fmt.Println("No image files found in the specified folders.")
		return nil
	}
	fmt.Printf("Found %d image(s) in %d folder(s)\n", len(filePaths), len(args))

	byFingerprint, hashErrors := fingerprintFiles(filePaths)
	for _, errMsg := range hashErrors {
		fmt.Printf("Failed: %s\n", errMsg)
	}
	if len(byFingerprint) == 0 {
		return fmt.Errorf("no files could be fingerprinted")
	}

	api, err := client.New(serverURL)
	if err != nil {
		return err
	}

	hashes := make([]string, 0, len(byFingerprint))
	for fp := range byFingerprint {
		hashes = append(hashes, fp)
	}

	// Ask the coordinator which fingerprints are new.
	presigned := make(map[string]string)
	for _, chunk := range chunkHashes(hashes) {
		grants, err := api.RequestUploads(ctx, chunk)
		if err != nil {
			return fmt.Errorf("requesting upload URLs: %w", err)
		}
		for fp, url := range grants.PresignedURLs {
			presigned[fp] = url
		}
		for fp, msg := range grants.Failed {
			fmt.Printf("Failed: %s: %s\n", fp, msg)
		}
	}

	skipped := len(byFingerprint) - len(presigned)
	if skipped > 0 {
		fmt.Printf("Skipping %d already-known photo(s)\n", skipped)
	}
	if len(presigned) == 0 {
		fmt.Println("Nothing new to upload.")
		return nil
	}

	// Upload new files concurrently.
	fmt.Printf("\nUploading %d new photo(s)...\n", len(presigned))
	uploadFailed := uploadFiles(ctx, api, presigned, byFingerprint)

	var uploaded []string
	for fp := range presigned {
		if _, failed := uploadFailed[fp]; !failed {
			uploaded = append(uploaded, fp)
		}
	}
	for fp, errMsg := range uploadFailed {
		fmt.Printf("Failed: %s: %s\n", filepath.Base(byFingerprint[fp]), errMsg)
	}
	if len(uploaded) == 0 {
		return fmt.Errorf("no files were uploaded successfully")
	}

	// Confirm what actually made it to storage.
	confirmed, duplicates := 0, 0
	for _, chunk := range chunkHashes(uploaded) {
		summary, err := api.ConfirmUploads(ctx, chunk)
		if err != nil {
			return fmt.Errorf("confirming uploads: %w", err)
		}
		confirmed += summary.Confirmed
		duplicates += summary.Duplicates
		for fp, msg := range summary.Failed {
			fmt.Printf("Warning: failed to confirm %s: %s\n", fp, msg)
		}
	}

	fmt.Printf("\nDone! Uploaded %d photo(s), %d skipped as duplicates\n", confirmed, skipped+duplicates)
	return nil
}

// uploadFiles PUTs each granted fingerprint's file to its presigned URL with
// a bounded worker pool. Returns per-fingerprint error messages.
func uploadFiles(ctx context.Context, api *client.Client, presigned, byFingerprint map[string]string) map[string]string {
	var (
		failed   = make(map[string]string)
		failedMu sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, 8) // 8 concurrent workers
	)

	bar := newUploadBar(len(presigned), "Uploading")
	for fp, url := range presigned {
		wg.Add(1)
		go func(fp, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			recordErr := func(err error) {
				failedMu.Lock()
				failed[fp] = err.Error()
				failedMu.Unlock()
			}

			data, err := os.ReadFile(byFingerprint[fp]) //nolint:gosec // paths come from user-provided folders
			if err != nil {
				recordErr(err)
				bar.Add(1)
				return
			}
			if err := api.UploadFile(ctx, url, data); err != nil {
				recordErr(err)
			}
			bar.Add(1)
		}(fp, url)
	}
	wg.Wait()
	fmt.Println()

	return failed
}
