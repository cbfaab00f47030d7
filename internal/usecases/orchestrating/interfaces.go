package orchestrating

import (
	"context"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces.go -package=mocks

// Governor é o que o gateway precisa do governador de uso
type Governor interface {
	Admit(ctx context.Context, call governing.Call) (*governing.Permit, error)
	Record(ctx context.Context, permit *governing.Permit, usage governing.Usage, callErr error)
}

// ImageChecker é a checagem prévia da imagem. Não consome tokens.
type ImageChecker interface {
	Check(ctx context.Context, image Image) error
}

// Extractor é a chamada ao modelo de visão. Informa o consumo mesmo quando falha.
type Extractor interface {
	Extract(ctx context.Context, image Image) (*Extraction, governing.Usage, error)
}
