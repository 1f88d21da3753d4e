package services

import (
	"fmt"
	"strings"
)

// EmailContent is a rendered transactional email, decoupled from the HTTP
// send step so templates stay testable on their own.
type EmailContent struct {
	Subject string
	HTML    string
	Text    string
}

// courseDisplayName maps a tier id to the name shown in emails.
func courseDisplayName(courseID string) string {
	switch courseID {
	case "matrice-1":
		return "Matrice — Niveau 1"
	case "matrice-2":
		return "Matrice — Niveau 2"
	default:
		if courseID == "" {
			return "votre formation"
		}
		return strings.ReplaceAll(courseID, "-", " ")
	}
}

func formatAmount(amountCents int64, currency string) string {
	if currency == "" {
		currency = "eur"
	}
	return fmt.Sprintf("%.2f %s", float64(amountCents)/100, strings.ToUpper(currency))
}

// RenderPurchaseConfirmation builds the email sent right after payment,
// before the buyer has created an account.
func RenderPurchaseConfirmation(courseID string, amountCents int64, currency string) EmailContent {
	courseName := courseDisplayName(courseID)
	amount := formatAmount(amountCents, currency)

	subject := fmt.Sprintf("Confirmation d'achat — %s", courseName)
	html := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><meta charset="UTF-8"><title>Confirmation d'achat</title></head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #f8f9fa; padding: 30px; border-radius: 10px;">
				<h1 style="color: #333;">Merci pour votre achat !</h1>
				<p style="color: #666; font-size: 16px;">Votre paiement de <strong>%s</strong> pour <strong>%s</strong> a bien été reçu.</p>
				<p style="color: #666; font-size: 16px;">Créez votre compte avec cette adresse email pour accéder à la formation. Vos bonus restent disponibles pendant 24 heures.</p>
				<p style="color: #999; font-size: 12px; margin-top: 30px;">Si vous n'êtes pas à l'origine de cet achat, contactez le support.</p>
			</div>
		</body>
		</html>
	`, amount, courseName)
	text := fmt.Sprintf(`Merci pour votre achat !

Votre paiement de %s pour %s a bien été reçu.

Créez votre compte avec cette adresse email pour accéder à la formation. Vos bonus restent disponibles pendant 24 heures.
`, amount, courseName)

	return EmailContent{Subject: subject, HTML: html, Text: text}
}

// RenderWelcome builds the email sent once after account activation,
// referencing the first activated course.
func RenderWelcome(courseID string) EmailContent {
	courseName := courseDisplayName(courseID)

	subject := fmt.Sprintf("Bienvenue — votre accès à %s est ouvert", courseName)
	html := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><meta charset="UTF-8"><title>Bienvenue</title></head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #f8f9fa; padding: 30px; border-radius: 10px;">
				<h1 style="color: #333;">Bienvenue !</h1>
				<p style="color: #666; font-size: 16px;">Votre compte est activé et <strong>%s</strong> vous attend dans votre espace membre.</p>
				<p style="color: #666; font-size: 16px;">Vos bonus éligibles ont été ajoutés automatiquement.</p>
			</div>
		</body>
		</html>
	`, courseName)
	text := fmt.Sprintf(`Bienvenue !

Votre compte est activé et %s vous attend dans votre espace membre.

Vos bonus éligibles ont été ajoutés automatiquement.
`, courseName)

	return EmailContent{Subject: subject, HTML: html, Text: text}
}

// RenderBonusDelivery builds the email sent after a standalone bonus
// purchase.
func RenderBonusDelivery(title, contentURL string) EmailContent {
	subject := fmt.Sprintf("Votre bonus — %s", title)

	link := ""
	if contentURL != "" {
		link = fmt.Sprintf(`<p style="font-size: 16px;"><a href="%s" style="color: #007bff;">Télécharger votre bonus</a></p>`, contentURL)
	}

	html := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><meta charset="UTF-8"><title>Votre bonus</title></head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #f8f9fa; padding: 30px; border-radius: 10px;">
				<h1 style="color: #333;">%s</h1>
				<p style="color: #666; font-size: 16px;">Merci pour votre achat. Votre bonus est disponible dans votre espace membre.</p>
				%s
			</div>
		</body>
		</html>
	`, title, link)
	text := fmt.Sprintf(`%s

Merci pour votre achat. Votre bonus est disponible dans votre espace membre.
%s
`, title, contentURL)

	return EmailContent{Subject: subject, HTML: html, Text: text}
}
