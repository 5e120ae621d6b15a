//go:build integration

package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	app "drive-json-publisher/application/publish"
	"drive-json-publisher/domain/publish"
	"drive-json-publisher/infrastructure/drive"
	"drive-json-publisher/infrastructure/httpapi"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"
	googledrive "google.golang.org/api/drive/v3"
)

const stepIdentity = "uploader@proj.iam.gserviceaccount.com"

// uploadMockDriveService is a mock implementation of drive.DriveService
type uploadMockDriveService struct {
	createErr     error
	permissionErr error
	created       [][]byte
	permissions   map[string]*googledrive.Permission
	deleted       []string
}

func newUploadMockDriveService() *uploadMockDriveService {
	return &uploadMockDriveService{
		permissions: make(map[string]*googledrive.Permission),
	}
}

func (m *uploadMockDriveService) CreateFile(ctx context.Context, file *googledrive.File, media io.Reader, mimeType string) (*googledrive.File, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	content, err := io.ReadAll(media)
	if err != nil {
		return nil, err
	}
	m.created = append(m.created, content)
	return &googledrive.File{Id: "abc123", Name: file.Name, WebViewLink: "https://view/abc123"}, nil
}

func (m *uploadMockDriveService) CreatePermission(ctx context.Context, fileID string, permission *googledrive.Permission) error {
	if m.permissionErr != nil {
		return m.permissionErr
	}
	m.permissions[fileID] = permission
	return nil
}

func (m *uploadMockDriveService) DeleteFile(ctx context.Context, fileID string) error {
	m.deleted = append(m.deleted, fileID)
	return nil
}

// stepAuthenticator hands out a drive.Client backed by the mock service
type stepAuthenticator struct {
	client publish.DriveClient
}

func (a *stepAuthenticator) Connect(ctx context.Context) (publish.DriveClient, error) {
	return a.client, nil
}

func (a *stepAuthenticator) Identity() string {
	return stepIdentity
}

type uploadContext struct {
	driveService *uploadMockDriveService
	auth         publish.Authenticator
	response     *httptest.ResponseRecorder
	body         map[string]any
}

func (u *uploadContext) router() http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := app.NewService(u.auth, "", app.WithLogger(log))
	return httpapi.NewRouter(httpapi.RouterConfig{}, svc, log, nil)
}

func (u *uploadContext) theDriveServiceAcceptsUploads() error {
	u.driveService = newUploadMockDriveService()
	client, err := drive.NewClient(context.Background(), nil, drive.WithDriveService(u.driveService))
	if err != nil {
		return err
	}
	u.auth = &stepAuthenticator{client: client}
	return nil
}

func (u *uploadContext) theDriveServiceRejectsUploadsWith(message string) error {
	u.driveService.createErr = errors.New(message)
	return nil
}

func (u *uploadContext) theDriveServiceRejectsSharingWith(message string) error {
	u.driveService.permissionErr = errors.New(message)
	return nil
}

func (u *uploadContext) noCredentialsAreConfigured() error {
	u.auth = app.Misconfigured(publish.NewConfigurationError(
		"Server not configured. Set SERVICE_ACCOUNT_JSON", publish.ErrNotConfigured))
	return nil
}

func (u *uploadContext) send(method, body string) error {
	req := httptest.NewRequest(method, "/api/upload-to-drive", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	u.response = httptest.NewRecorder()
	u.router().ServeHTTP(u.response, req)

	u.body = nil
	if u.response.Body.Len() > 0 {
		if err := json.Unmarshal(u.response.Body.Bytes(), &u.body); err != nil {
			return fmt.Errorf("response is not JSON: %q", u.response.Body.String())
		}
	}
	return nil
}

func (u *uploadContext) iSendARequestWithBody(method string, body *godog.DocString) error {
	return u.send(method, body.Content)
}

func (u *uploadContext) iSendAnOPTIONSRequest() error {
	return u.send(http.MethodOptions, "")
}

func (u *uploadContext) theResponseStatusShouldBe(status int) error {
	if u.response.Code != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, u.response.Code, u.response.Body.String())
	}
	return nil
}

func (u *uploadContext) field(name string) (string, error) {
	v, ok := u.body[name]
	if !ok {
		return "", fmt.Errorf("response has no field %q: %v", name, u.body)
	}
	return fmt.Sprint(v), nil
}

func (u *uploadContext) theResponseFieldShouldBe(name, want string) error {
	got, err := u.field(name)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s %q, got %q", name, want, got)
	}
	return nil
}

func (u *uploadContext) theResponseFieldShouldContain(name, want string) error {
	got, err := u.field(name)
	if err != nil {
		return err
	}
	if !strings.Contains(got, want) {
		return fmt.Errorf("expected %s to contain %q, got %q", name, want, got)
	}
	return nil
}

func (u *uploadContext) theResponseShouldHaveAHintContaining(want string) error {
	if err := u.theResponseFieldShouldContain("hint", want); err != nil {
		return err
	}
	return u.theResponseFieldShouldContain("hint", stepIdentity)
}

func (u *uploadContext) filesShouldHaveBeenCreated(n int) error {
	if got := len(u.driveService.created); got != n {
		return fmt.Errorf("expected %d files created, got %d", n, got)
	}
	return nil
}

func (u *uploadContext) filesShouldHaveBeenSharedPublicly(n int) error {
	if got := len(u.driveService.permissions); got != n {
		return fmt.Errorf("expected %d files shared, got %d", n, got)
	}
	for id, p := range u.driveService.permissions {
		if p.Type != "anyone" || p.Role != "reader" {
			return fmt.Errorf("file %s shared as %s/%s", id, p.Type, p.Role)
		}
	}
	return nil
}

func (u *uploadContext) theFileShouldHaveBeenDeleted(id string) error {
	for _, d := range u.driveService.deleted {
		if d == id {
			return nil
		}
	}
	return fmt.Errorf("expected %s to be deleted, deleted: %v", id, u.driveService.deleted)
}

func (u *uploadContext) theCORSHeadersShouldBePresent() error {
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
	for k, v := range want {
		if got := u.response.Header().Get(k); got != v {
			return fmt.Errorf("expected %s %q, got %q", k, v, got)
		}
	}
	return nil
}

func (u *uploadContext) theUploadedContentShouldBe(want *godog.DocString) error {
	if len(u.driveService.created) != 1 {
		return fmt.Errorf("expected exactly one upload, got %d", len(u.driveService.created))
	}
	if got := string(u.driveService.created[0]); got != want.Content {
		return fmt.Errorf("expected content %q, got %q", want.Content, got)
	}
	return nil
}

// InitializeUploadScenario registers the HTTP upload steps
func InitializeUploadScenario(ctx *godog.ScenarioContext) {
	u := &uploadContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		*u = uploadContext{}
		return c, nil
	})

	ctx.Step(`^the Drive service accepts uploads$`, u.theDriveServiceAcceptsUploads)
	ctx.Step(`^the Drive service rejects uploads with "([^"]*)"$`, u.theDriveServiceRejectsUploadsWith)
	ctx.Step(`^the Drive service rejects sharing with "([^"]*)"$`, u.theDriveServiceRejectsSharingWith)
	ctx.Step(`^no credentials are configured$`, u.noCredentialsAreConfigured)
	ctx.Step(`^I send a (GET|POST|PUT|DELETE|PATCH) request with body:$`, u.iSendARequestWithBody)
	ctx.Step(`^I send an OPTIONS request$`, u.iSendAnOPTIONSRequest)
	ctx.Step(`^the response status should be (\d+)$`, u.theResponseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, u.theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, u.theResponseFieldShouldContain)
	ctx.Step(`^the response should have a hint containing "([^"]*)"$`, u.theResponseShouldHaveAHintContaining)
	ctx.Step(`^(\d+) files? should have been created$`, u.filesShouldHaveBeenCreated)
	ctx.Step(`^(\d+) files? should have been shared publicly$`, u.filesShouldHaveBeenSharedPublicly)
	ctx.Step(`^the file "([^"]*)" should have been deleted$`, u.theFileShouldHaveBeenDeleted)
	ctx.Step(`^the CORS headers should be present$`, u.theCORSHeadersShouldBePresent)
	ctx.Step(`^the uploaded content should be:$`, u.theUploadedContentShouldBe)
}
