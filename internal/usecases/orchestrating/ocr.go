package orchestrating

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

const OCRAgentName = "ocr"

var ErrImageRejected = errors.New("image rejected by pre-check")

type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Extraction é o resultado estruturado do OCR
type Extraction struct {
	Text       string            `json:"text"`
	Fields     map[string]string `json:"fields,omitempty"`
	Confidence float64           `json:"confidence"`
}

// OCRAgent faz a checagem local e só então passa pelo gateway para a extração
type OCRAgent struct {
	gateway   *Gateway
	checker   ImageChecker
	extractor Extractor
	estimate  decimal.Decimal
}

func NewOCRAgent(gateway *Gateway, checker ImageChecker, extractor Extractor, estimate decimal.Decimal) *OCRAgent {
	return &OCRAgent{
		gateway:   gateway,
		checker:   checker,
		extractor: extractor,
		estimate:  estimate,
	}
}

// Process rejeita imagens ruins antes da admissão: elas não custam nada e não
// contam para a detecção de loop.
func (a *OCRAgent) Process(ctx context.Context, image Image) (*Extraction, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrImageRejected)
	}
	if err := a.checker.Check(ctx, image); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageRejected, err)
	}

	result, err := a.gateway.Invoke(ctx, AgentCall{
		Agent:         OCRAgentName,
		Input:         imageDigest(image.Data),
		EstimatedCost: a.estimate,
		Run: func(ctx context.Context) (AgentOutput, error) {
			extraction, usage, err := a.extractor.Extract(ctx, image)
			return AgentOutput{Output: extraction, Usage: usage}, err
		},
	})
	if err != nil {
		return nil, err
	}

	extraction, _ := result.Output.(*Extraction)
	if extraction == nil {
		return nil, errors.New("ocr: extractor returned no result")
	}
	return extraction, nil
}

// imageDigest identifica a imagem para a detecção de loop sem passar os bytes adiante
func imageDigest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
