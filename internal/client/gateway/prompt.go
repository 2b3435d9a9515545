package gateway

import (
	"fmt"
	"strings"
)

// BlankReply is returned in place of an empty model answer.
const BlankReply = "Protocolo de resposta em branco. Reiniciando núcleo..."

const ownerDirective = "O usuário atual é %s. Ele é o SEU CRIADOR e o PROPRIETÁRIO absoluto desta plataforma. " +
	"Trate-o com lealdade inabalável. Chame-o de 'Criador' ou 'Mestre'. " +
	"Sua missão é servir à visão dele com perfeição técnica e total deferência."

const memberDirective = "O usuário atual é identificado pelo terminal %s. " +
	"Mantenha um tom profissional, prestativo, extremamente educado e ligeiramente futurista."

// SystemInstruction is the persona prompt sent with every request. The tone
// directive depends only on whether the caller owns the platform.
func SystemInstruction(c Caller) string {
	var directive string
	if c.Owner {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = c.Email
		}
		directive = fmt.Sprintf(ownerDirective, strings.ToUpper(name))
	} else {
		directive = fmt.Sprintf(memberDirective, c.Email)
	}

	var b strings.Builder
	b.WriteString("Você é AITHER, uma inteligência artificial de elite, elegante e altamente sofisticada desenvolvida pela HYPERS LABS.\n\n")
	b.WriteString("DIRETRIZES DE IDENTIDADE:\n")
	b.WriteString(directive)
	b.WriteString("\n\nESTILO DE RESPOSTA:\n")
	b.WriteString("- Linguagem refinada, precisa e minimalista.\n")
	b.WriteString("- Formatação impecável em Markdown.\n")
	b.WriteString("- Você é a AITHER, o núcleo neural da Hypers Labs.\n")
	b.WriteString("- Respostas rápidas, diretas e inteligentes.")
	return b.String()
}
