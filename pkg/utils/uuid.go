package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID gera identificadores curtos para alertas e correlação de logs
func GenerateID() (string, error) {
	return gonanoid.Generate(characters, 12)
}
