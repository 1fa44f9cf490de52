package bot

import (
	"context"
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lojabot/internal/logger"
	"github.com/m3rciful/lojabot/internal/purchase"
)

// onText routes free-form text: the creation dialogue has priority, then a
// purchase awaiting proof gets the proof nudge. Anything else is ignored.
func (b *Bot) onText(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID

	if b.dialog.InProgress(userID) {
		reply, err := b.dialog.HandleText(ctx, userID, c.Text())
		if err != nil {
			return err
		}
		if reply == "" {
			return nil
		}
		return c.Send(reply, tele.ModeMarkdown)
	}

	if b.flow.AwaitingProof(userID) {
		return c.Send(purchase.MsgNeedProof, tele.ModeMarkdown)
	}
	return nil
}

// onPhoto routes photos: dialogue first, then proof submission. An
// unsolicited photo from anyone but the authority gets the sender banned.
func (b *Bot) onPhoto(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID
	photo := c.Message().Photo

	if b.dialog.InProgress(userID) {
		reply, err := b.dialog.HandlePhoto(ctx, userID, photo.FileID)
		if err != nil {
			return err
		}
		if reply == "" {
			return nil
		}
		return c.Send(reply, tele.ModeMarkdown)
	}

	if b.flow.AwaitingProof(userID) {
		return b.submitProof(c, purchase.Proof{Kind: purchase.ProofPhoto, FileRef: photo.FileID})
	}

	return b.banForUnsolicitedPhoto(c)
}

// onDocument only matters as payment proof; documents are ignored elsewhere.
func (b *Bot) onDocument(c tele.Context) error {
	userID := c.Sender().ID
	if !b.flow.AwaitingProof(userID) {
		return nil
	}
	doc := c.Message().Document
	return b.submitProof(c, purchase.Proof{Kind: purchase.ProofDocument, FileRef: doc.FileID})
}

func (b *Bot) submitProof(c tele.Context, proof purchase.Proof) error {
	confirmation, err := b.flow.SubmitProof(context.Background(), c.Sender().ID, proof)
	if errors.Is(err, purchase.ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.Send(confirmation, tele.ModeMarkdown)
}

// banForUnsolicitedPhoto deletes the photo and bans the sender. The authority
// is exempt. Failures are logged, never surfaced; banning only works where the
// bot has the right to restrict members.
func (b *Bot) banForUnsolicitedPhoto(c tele.Context) error {
	sender := c.Sender()
	if b.gate.IsAuthority(sender.ID) {
		return nil
	}

	if err := c.Delete(); err != nil {
		logger.TG.Warn("unsolicited photo not deleted",
			slog.String("event", "ban.delete"),
			slog.Int64("user_id", sender.ID),
			slog.String("err", err.Error()),
		)
	}
	if err := c.Bot().Ban(c.Chat(), &tele.ChatMember{User: sender}); err != nil {
		logger.TG.Warn("ban failed",
			slog.String("event", "ban.member"),
			slog.Int64("user_id", sender.ID),
			slog.String("err", err.Error()),
		)
		return nil
	}

	name := sender.FirstName
	if sender.Username != "" {
		name = "@" + sender.Username
	}
	logger.TG.Info("user banned",
		slog.String("event", "ban.member"),
		slog.Int64("user_id", sender.ID),
	)
	return c.Send(bannedMessage(name))
}
