package bot

import (
	"fmt"

	"github.com/m3rciful/lojabot/internal/catalog"
)

const (
	msgNoProducts = "⚠️ Nenhum produto disponível no momento. Volte mais tarde!"

	msgNoPermission = "❌ Você não tem permissão para usar este comando."
	msgCancelled    = "Operação cancelada."

	usageRemove     = "Uso: /remover <id_do_produto>\n\nUse /produtos para ver a lista de produtos e seus IDs."
	usageAddPreview = "Uso: /addprevias <id_do_produto> <link_da_previa>\n\nUse /produtos para ver a lista de produtos e seus IDs."

	alertNotFound  = "Produto não encontrado."
	alertNoPreview = "Este produto não possui prévia disponível ou seu dispositivo não suporta o formato."

	btnBuyText     = "💸 COMPRAR AGORA 💸"
	btnPreviewText = "👀 Ver Prévia"

	reportMissingLink    = "❌ Erro: Link do produto não encontrado."
	reportDeliveryFailed = "❌ Erro ao enviar mensagem para o usuário. Ele pode ter bloqueado o bot."
	reportRejectFailed   = "❌ Comprovante rejeitado, mas não foi possível notificar o usuário."

	alertAlreadyDecided = "⚠️ Esta compra já foi decidida."
)

func welcomeMessage(firstName string) string {
	return fmt.Sprintf(
		"👋 Olá, %s!\n\n"+
			"Bem-vindo ao *VIP Content Store* - Sua loja de conteúdos exclusivos!\n\n"+
			"🔹 Acesse produtos exclusivos\n"+
			"🔹 Conteúdos premium\n"+
			"🔹 Entrega instantânea após pagamento\n\n"+
			"Use /produtos para ver nossa seleção VIP 👑",
		firstName,
	)
}

func productCard(id string, p catalog.Product) string {
	return fmt.Sprintf(
		"🛍️ *%s* 🛍️\n\n"+
			"🆔 *ID:* `%s`\n"+
			"📝 *Descrição:*\n%s\n\n"+
			"💰 *Preço:* R$ %s\n",
		p.Name, id, p.Description, p.Price.StringFixed(2),
	)
}

func previewMessage(link string) string {
	return fmt.Sprintf(
		"🔍 *Prévia do Produto* 🔍\n\n"+
			"Você está visualizando uma amostra do conteúdo:\n\n"+
			"👉 [Clique aqui para acessar a prévia](%s)",
		link,
	)
}

func removedMessage(id string, p catalog.Product) string {
	return fmt.Sprintf(
		"✅ *Produto removido com sucesso!*\n\n"+
			"*Nome:* %s\n"+
			"*ID:* %s",
		p.Name, id,
	)
}

func previewAddedMessage(id string, p catalog.Product, link string) string {
	return fmt.Sprintf(
		"✅ *Prévia adicionada com sucesso ao produto!*\n\n"+
			"*ID:* %s\n"+
			"*Nome:* %s\n"+
			"*Prévia:* %s",
		id, p.Name, link,
	)
}

func notFoundMessage(id string) string {
	return fmt.Sprintf("❌ Produto com ID %s não encontrado.", id)
}

func bannedMessage(name string) string {
	return fmt.Sprintf("🚫 Usuário %s foi banido por enviar conteúdo não autorizado!", name)
}
