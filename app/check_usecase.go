package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ludo-technologies/mdtoken/domain"
)

// CheckUseCase orchestrates the token limit checking workflow
type CheckUseCase struct {
	service    domain.CheckService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewCheckUseCase creates a new check use case
func NewCheckUseCase(service domain.CheckService, formatter domain.OutputFormatter) *CheckUseCase {
	return &CheckUseCase{
		service:    service,
		formatter:  formatter,
		fileHelper: NewFileHelper(),
	}
}

// Execute performs the complete check workflow and writes the formatted
// result to the request's output writer
func (uc *CheckUseCase) Execute(ctx context.Context, req domain.CheckRequest) (*domain.CheckResponse, error) {
	if err := uc.validateRequest(&req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	response, err := uc.service.Check(ctx, req)
	if err != nil {
		return nil, err
	}

	if uc.formatter != nil {
		if err := uc.formatter.Write(response, req.OutputFormat, req.OutputWriter); err != nil {
			return nil, domain.NewOutputError("failed to write output", err)
		}
	}

	return response, nil
}

// CheckFile checks a single markdown file
func (uc *CheckUseCase) CheckFile(ctx context.Context, filePath string, req domain.CheckRequest) (*domain.CheckResponse, error) {
	if !uc.fileHelper.IsValidMarkdownFile(filePath) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not a markdown file: %s", filePath), nil)
	}

	exists, err := uc.fileHelper.FileExists(filePath)
	if err != nil {
		return nil, domain.NewFileNotFoundError(filePath, err)
	}
	if !exists {
		return nil, domain.NewFileNotFoundError(filePath, fmt.Errorf("file does not exist"))
	}

	req.Paths = []string{filePath}
	return uc.Execute(ctx, req)
}

// validateRequest validates the check request and fills in defaults
func (uc *CheckUseCase) validateRequest(req *domain.CheckRequest) error {
	if req.DefaultLimit < 0 {
		return fmt.Errorf("default limit cannot be negative")
	}
	if req.TotalLimit < 0 {
		return fmt.Errorf("total limit cannot be negative")
	}
	if req.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}

	if req.OutputFormat == "" {
		req.OutputFormat = domain.OutputFormatText
	}
	switch req.OutputFormat {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatCSV:
	default:
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}

	if req.OutputWriter == nil {
		req.OutputWriter = os.Stdout
	}
	return nil
}

// CheckUseCaseBuilder provides a builder pattern for creating CheckUseCase
type CheckUseCaseBuilder struct {
	service    domain.CheckService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewCheckUseCaseBuilder creates a new builder
func NewCheckUseCaseBuilder() *CheckUseCaseBuilder {
	return &CheckUseCaseBuilder{}
}

// WithService sets the check service
func (b *CheckUseCaseBuilder) WithService(service domain.CheckService) *CheckUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *CheckUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *CheckUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithFileHelper sets the file helper
func (b *CheckUseCaseBuilder) WithFileHelper(fileHelper *FileHelper) *CheckUseCaseBuilder {
	b.fileHelper = fileHelper
	return b
}

// Build creates the CheckUseCase with the configured dependencies
func (b *CheckUseCaseBuilder) Build() (*CheckUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("check service is required")
	}

	uc := &CheckUseCase{
		service:    b.service,
		formatter:  b.formatter,
		fileHelper: b.fileHelper,
	}
	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}
	return uc, nil
}
