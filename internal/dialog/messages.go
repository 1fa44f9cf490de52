package dialog

import (
	"fmt"

	"github.com/m3rciful/lojabot/internal/catalog"
)

const (
	msgAskName = "👑 *Modo Administrador - Adicionar Produto*\n\n" +
		"Por favor, envie o nome do produto:"
	msgAskDescription = "Ótimo! Agora envie a descrição do produto:"
	msgAskPrice       = "Agora, envie o preço do produto (apenas números, ex: 49.99):"
	msgBadPrice       = "❌ Preço inválido. Envie um número positivo (ex: 49.99 ou 50)."
	msgAskPhoto       = "Agora, envie a foto do produto:"
	msgNeedPhoto      = "❌ Por favor, envie uma foto válida."
	msgNeedText       = "❌ Este passo espera uma resposta em texto."
	msgAskLink        = "Agora, envie o link que será liberado após o pagamento:"
	msgBadLink        = "❌ Link inválido. Deve começar com http:// ou https://"
	msgAskPreview     = "Deseja adicionar um link de prévia? (Envie o link ou 'não' para pular):"
	msgBadPreview     = "⚠️ Link de prévia inválido. Pulando a prévia."
)

func createdMessage(id string, p catalog.Product) string {
	msg := fmt.Sprintf(
		"✅ *Produto adicionado com sucesso!*\n\n"+
			"🆔 *ID:* %s\n"+
			"📛 *Nome:* %s\n"+
			"💰 *Preço:* R$ %s\n",
		id, p.Name, p.Price.StringFixed(2),
	)
	if p.Preview != "" {
		msg += fmt.Sprintf("\n👀 *Prévia:* %s", p.Preview)
	}
	return msg
}
