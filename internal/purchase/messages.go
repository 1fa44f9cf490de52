package purchase

import (
	"fmt"

	"github.com/m3rciful/lojabot/internal/catalog"
)

const (
	msgChooseAction = "Selecione uma ação:"

	msgProofReceived = "✅ *Comprovante recebido!*\n\n" +
		"Estamos verificando seu pagamento. Você receberá uma mensagem assim que seu acesso for liberado."

	// MsgNeedProof nudges a buyer who sent something other than a receipt
	// while a purchase is awaiting proof.
	MsgNeedProof = "❌ Por favor, envie uma foto ou documento do comprovante."

	msgRejected = "❌ *Seu comprovante foi rejeitado.*\n\n" +
		"Por favor, verifique se:\n" +
		"1. O valor está correto\n" +
		"2. O comprovante é legível\n" +
		"3. O pagamento foi realmente realizado\n\n" +
		"Entre em contato com nosso suporte para mais informações."

	msgRejectedReport = "✅ Comprovante rejeitado e usuário notificado."
)

func paymentInstructions(p catalog.Product, pixKey string) string {
	return fmt.Sprintf(
		"🛒 *Confirmar Compra* 🛒\n\n"+
			"🛍️ *Produto:* %s\n"+
			"💰 *Valor:* R$ %s\n\n"+
			"💸 *Pagamento via PIX* 💸\n"+
			"Chave PIX (Copie e cole):\n\n"+
			"`%s`\n\n"+
			"⚠️ *ATENÇÃO:* Envie o comprovante aqui mesmo após o pagamento para liberarmos seu acesso.",
		p.Name, p.Price.StringFixed(2), pixKey,
	)
}

func proofCaption(session *Session, p catalog.Product) string {
	name := p.Name
	if name == "" {
		name = "N/A"
	}
	return fmt.Sprintf(
		"📄 *Novo Comprovante Recebido* 📄\n\n"+
			"👤 *Usuário:* @%s (ID: %d)\n"+
			"🛒 *Produto:* %s\n"+
			"💰 *Valor:* R$ %s\n"+
			"🆔 *ID do Produto:* %s",
		session.BuyerHandle, session.BuyerID, name, p.Price.StringFixed(2), session.ProductID,
	)
}

func decisionButtons(session *Session) []Button {
	return []Button{
		{
			Text: "✅ Liberar Acesso",
			Data: fmt.Sprintf("liberar_%d_%s", session.BuyerID, session.ProductID),
		},
		{
			Text: "❌ Rejeitar",
			Data: fmt.Sprintf("rejeitar_%d", session.BuyerID),
		},
	}
}

func approvedMessage(p catalog.Product) string {
	return fmt.Sprintf(
		"🎉 *Pagamento Confirmado!* 🎉\n\n"+
			"Seu acesso ao produto *%s* foi liberado!\n\n"+
			"👉 [Clique aqui para acessar seu conteúdo](%s)\n\n"+
			"Obrigado por sua compra! Se tiver qualquer dúvida, entre em contato.",
		p.Name, p.Link,
	)
}

func approvedReport(buyerID int64, p catalog.Product) string {
	return fmt.Sprintf(
		"✅ *Acesso liberado com sucesso!*\n\n"+
			"👤 Usuário: %d\n"+
			"📦 Produto: %s\n"+
			"💵 Valor: R$ %s",
		buyerID, p.Name, p.Price.StringFixed(2),
	)
}
