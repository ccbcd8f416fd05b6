package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheusHen/ptstd/ptstd/crypto"
)

var errMissingKey = errors.New("--key is required (hex key||iv from 'ptstd aes keygen')")

func newAESCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aes",
		Short: "AES-256-CBC key generation and encryption",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "keygen",
		Short: "Print a random key||iv as hex",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := crypto.NewAES()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), crypto.Hex(c.KeyIV()))
			return nil
		},
	})

	var key string
	var useHex bool
	run := func(encrypt bool) func(cmd *cobra.Command, _ []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if key == "" {
				return errMissingKey
			}
			raw, err := hex.DecodeString(strings.TrimSpace(key))
			if err != nil {
				return fmt.Errorf("decode key: %w", err)
			}
			c, err := crypto.ParseAESKeyIV(raw)
			if err != nil {
				return err
			}
			in, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}

			var out []byte
			if encrypt {
				if out, err = c.Encrypt(in); err != nil {
					return err
				}
				if useHex {
					out = []byte(crypto.Hex(out) + "\n")
				}
			} else {
				if useHex {
					if in, err = hex.DecodeString(strings.TrimSpace(string(in))); err != nil {
						return fmt.Errorf("decode input: %w", err)
					}
				}
				if out, err = c.Decrypt(in); err != nil {
					return err
				}
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
	}

	enc := &cobra.Command{Use: "encrypt", Short: "Encrypt stdin to stdout", RunE: run(true)}
	dec := &cobra.Command{Use: "decrypt", Short: "Decrypt stdin to stdout", RunE: run(false)}
	for _, c := range []*cobra.Command{enc, dec} {
		c.Flags().StringVarP(&key, "key", "k", "", "hex key||iv (96 hex chars)")
		c.Flags().BoolVar(&useHex, "hex", false, "ciphertext is hex text instead of raw bytes")
		cmd.AddCommand(c)
	}
	return cmd
}

func newRSACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsa",
		Short: "RSA key management",
	}

	var bits int
	var dir string
	keygen := &cobra.Command{
		Use:   "keygen",
		Short: "Write key.pem (PKCS#8) and key.pub.pem (SPKI)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kp, err := crypto.GenerateRSAKeyPairBits(bits)
			if err != nil {
				return err
			}
			priv, err := kp.PrivateKeyPEM()
			if err != nil {
				return err
			}
			pub, err := kp.PublicKeyPEM()
			if err != nil {
				return err
			}
			privPath := filepath.Join(dir, "key.pem")
			pubPath := filepath.Join(dir, "key.pub.pem")
			if err := os.WriteFile(privPath, []byte(priv), 0o600); err != nil {
				return err
			}
			if err := os.WriteFile(pubPath, []byte(pub), 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privPath, pubPath)
			return nil
		},
	}
	keygen.Flags().IntVar(&bits, "bits", crypto.RSABits, "modulus size")
	keygen.Flags().StringVar(&dir, "dir", ".", "output directory")
	cmd.AddCommand(keygen)
	return cmd
}

func loadRSAKey(path string) (*crypto.RSAKeyPair, error) {
	if path == "" {
		return crypto.GenerateRSAKeyPair()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return crypto.ParseRSAPrivateKeyPEM(string(b))
}
