package storage

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// Upload categories and their allowed file extensions. Extension is the
// gate; MimeType is recorded from the part header for the caller.
var allowedExtensions = map[string][]string{
	"models": {".glb", ".gltf", ".usdz"},
	"images": {".jpg", ".jpeg", ".png", ".gif", ".webp"},
	"videos": {".mp4", ".webm", ".mov"},
}

const maxUploadBytes = 100 << 20 // 100 MB

type UploadResult struct {
	URL       string `json:"url"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

func ValidUploadCategory(category string) bool {
	_, ok := allowedExtensions[category]
	return ok
}

// SaveUploadedFile stores a multipart upload under uploads/{category}/ with
// a uuid name and returns the root-relative URL the asset will reference.
func SaveUploadedFile(file multipart.File, header *multipart.FileHeader, category string) (*UploadResult, error) {
	exts, ok := allowedExtensions[category]
	if !ok {
		return nil, fmt.Errorf("unknown upload category %q", category)
	}
	if header.Size > maxUploadBytes {
		return nil, fmt.Errorf("file too large: %d bytes", header.Size)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(exts, ext) {
		return nil, fmt.Errorf("extension %q not allowed for category %q", ext, category)
	}

	dir := filepath.Join(UploadDir(), category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if written > maxUploadBytes {
		os.Remove(dst.Name())
		return nil, fmt.Errorf("file too large")
	}

	mime := header.Header.Get("Content-Type")
	return &UploadResult{
		URL:       "/uploads/" + category + "/" + name,
		MimeType:  mime,
		SizeBytes: written,
	}, nil
}

// UploadBase64Image pushes a data-URL image to Cloudinary when the env is
// configured. Legacy path kept for admin clients that still send base64.
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET, CLOUDINARY_FOLDER (optional)
func UploadBase64Image(base64ImageSrc string, publicID string) map[string]string {
	if base64ImageSrc == "" {
		fmt.Printf("ERROR: Empty base64 image\n")
		return map[string]string{"url": ""}
	}

	i := strings.Index(base64ImageSrc, ",")
	payload := base64ImageSrc
	if i != -1 {
		payload = base64ImageSrc[i+1:]
	}

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		fmt.Printf("ERROR: Missing Cloudinary env vars\n")
		return map[string]string{"url": ""}
	}

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/image/upload"

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", apiKey)

	finalPublicID := publicID
	if folder != "" {
		finalPublicID = folder + "/" + publicID
	}
	if finalPublicID != "" {
		form.Add("public_id", finalPublicID)
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)

	// Cloudinary signed upload: SHA1 over sorted params + secret
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, apiSecret)
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))
	form.Add("signature", signature)

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		fmt.Printf("ERROR: Failed to create request: %v\n", err)
		return map[string]string{"url": ""}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("ERROR: HTTP request failed: %v\n", err)
		return map[string]string{"url": ""}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Printf("ERROR: Failed to read response: %v\n", err)
		return map[string]string{"url": ""}
	}

	if res.StatusCode != 200 {
		fmt.Printf("ERROR: Cloudinary returned status %d: %s\n", res.StatusCode, string(body))
		return map[string]string{"url": ""}
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &cloudRes); err != nil {
		fmt.Printf("ERROR: Failed to parse JSON: %v\n", err)
		return map[string]string{"url": ""}
	}

	if cloudRes.Error.Message != "" {
		fmt.Printf("ERROR: Cloudinary error: %s\n", cloudRes.Error.Message)
		return map[string]string{"url": ""}
	}

	urlOut := cloudRes.SecureURL
	if urlOut == "" {
		urlOut = cloudRes.URL
	}
	if urlOut == "" {
		fmt.Printf("ERROR: No URL returned from Cloudinary\n")
		return map[string]string{"url": ""}
	}

	return map[string]string{"url": urlOut}
}
