// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/towerctl/towerctl/internal/aws"
	"github.com/towerctl/towerctl/internal/config"
	"github.com/towerctl/towerctl/internal/meta"
	"github.com/towerctl/towerctl/internal/smtpcred"
)

// smtpDefaultAttrs specifies the default attributes displayed for derived
// SMTP credentials.
var smtpDefaultAttrs = []string{".username", ".password", ".host"}

// Secret keys used when reading the IAM key pair from Secrets Manager. These
// match the key names the tower-project stack stores for its service user.
const (
	secretKeyAccessKeyID     = "aws_access_key_id"
	secretKeySecretAccessKey = "aws_secret_access_key"
)

// smtpCommandAction is the action handler for the "smtp" subcommand. It turns
// an IAM key pair into an SES SMTP login. The key pair comes from flags or,
// with --secret-arn, from a Secrets Manager secret. With --store the derived
// login is written back to another secret.
func smtpCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "smtp") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(smtpcred.Credential{})) {
		return nil
	}

	config.Config.Namespace = "smtp"

	accessKeyID := cmd.String("access-key-id")
	secretAccessKey := cmd.String("secret-access-key")
	secretArn := cmd.String("secret-arn")
	storeArn := cmd.String("store")

	var secrets aws.SecretsAPI
	if secretArn != "" || storeArn != "" {
		clients, err := NewAWSClients(ctx, cmd)
		if err != nil {
			return err
		}
		secrets = clients.Secrets
	}

	if secretArn != "" {
		secret, err := aws.SecretJSON(ctx, secrets, secretArn)
		if err != nil {
			return err
		}
		accessKeyID = secret[secretKeyAccessKeyID]
		secretAccessKey = secret[secretKeySecretAccessKey]
		if secretAccessKey == "" {
			return fmt.Errorf("secret %q has no %s entry", secretArn, secretKeySecretAccessKey)
		}
	}

	if secretAccessKey == "" {
		return fmt.Errorf("either --secret-access-key or --secret-arn is required")
	}

	cred, err := smtpcred.Credentials(accessKeyID, secretAccessKey, cmd.String("region"))
	if err != nil {
		return err
	}
	log.Debugf("credential derived: username=%s, host=%s", cred.Username, cred.Host)

	if storeArn != "" {
		err := aws.PutSecretJSON(ctx, secrets, storeArn, map[string]string{
			"username": cred.Username,
			"password": cred.Password,
			"host":     cred.Host,
		})
		if err != nil {
			return err
		}
		log.Infof("stored SMTP credentials: secret=%s", storeArn)
	}

	al := BuildAttrs(cmd, smtpDefaultAttrs...)
	return EmitJSONSlice([]smtpcred.Credential{cred}, al, cmd)
}

// smtpCommandBuilder constructs the cli.Command for "smtp", wiring metadata,
// flags, and the action handler.
func smtpCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "smtp",
		Usage:     "derive SES SMTP credentials from an IAM key pair",
		UsageText: "towerctl smtp [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "access-key-id",
				Usage: "IAM access key ID, used verbatim as the SMTP username",
			},
			&cli.StringFlag{
				Name:  "secret-access-key",
				Usage: "IAM secret access key to derive the SMTP password from",
			},
			&cli.StringFlag{
				Name:  "secret-arn",
				Usage: "Secrets Manager secret holding the IAM key pair",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Secrets Manager secret to write the derived login to",
			},
			func() *cli.StringFlag {
				f := NewRegionFlag("smtp", meta.Config.Source)
				f.Validator = func(value string) error {
					return FlagValidators(value, SESRegionValidator)
				}
				return f
			}(),
			NewProfileFlag("smtp", meta.Config.Source),
		},
		Action: smtpCommandAction,
		Meta:   meta,
	}).Build()
}
