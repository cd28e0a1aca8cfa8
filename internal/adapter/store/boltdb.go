package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"lexis/internal/domain"
	"lexis/internal/port"
)

// ErrNotFound is returned when a document or chunk does not exist.
var ErrNotFound = errors.New("not found")

var (
	bucketDocs      = []byte("docs")
	bucketChunks    = []byte("chunks")
	bucketBlobs     = []byte("blobs")
	bucketTerms     = []byte("terms")
	bucketStats     = []byte("stats")
	bucketDocChunks = []byte("doc_chunks")
	keyStats        = []byte("corpus_stats")
)

var allBuckets = [][]byte{bucketDocs, bucketChunks, bucketBlobs, bucketTerms, bucketStats, bucketDocChunks}

type BoltStore struct {
	db *bbolt.DB
}

var _ port.IndexStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type docMeta struct {
	Path    string `json:"path"`
	ModTime int64  `json:"mod_time"`
	Lang    string `json:"lang"`
}

type chunkMeta struct {
	DocID     string         `json:"doc_id"`
	StartLine int            `json:"start_line"`
	EndLine   int            `json:"end_line"`
	Tokens    []domain.Token `json:"tokens"`
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		var meta docMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		doc = meta.document(id)
		return nil
	})
	return doc, err
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			docs = append(docs, meta.document(string(k)))
			return nil
		})
	})
	return docs, err
}

func (m docMeta) document(id string) domain.Document {
	return domain.Document{
		ID:      id,
		Path:    m.Path,
		ModTime: time.Unix(m.ModTime, 0),
		Lang:    m.Lang,
	}
}

func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		c, ok, err := readChunk(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("chunk %s: %w", id, ErrNotFound)
		}
		chunk = c
		return nil
	})
	return chunk, err
}

func (s *BoltStore) GetChunksByDoc(docID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		ids, err := docChunkIDs(tx, docID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			c, ok, err := readChunk(tx, id)
			if err != nil {
				return err
			}
			if ok {
				chunks = append(chunks, c)
			}
		}
		return nil
	})
	return chunks, err
}

func readChunk(tx *bbolt.Tx, id string) (domain.Chunk, bool, error) {
	data := tx.Bucket(bucketChunks).Get([]byte(id))
	if data == nil {
		return domain.Chunk{}, false, nil
	}
	var meta chunkMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.Chunk{}, false, fmt.Errorf("decode chunk %s: %w", id, err)
	}
	text := tx.Bucket(bucketBlobs).Get([]byte(id))
	return domain.Chunk{
		ID:        id,
		DocID:     meta.DocID,
		StartLine: meta.StartLine,
		EndLine:   meta.EndLine,
		Tokens:    meta.Tokens,
		Text:      string(text),
	}, true, nil
}

func docChunkIDs(tx *bbolt.Tx, docID string) ([]string, error) {
	data := tx.Bucket(bucketDocChunks).Get([]byte(docID))
	if data == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode chunk list of %s: %w", docID, err)
	}
	return ids, nil
}

func (s *BoltStore) GetPostings(term string) ([]domain.Posting, error) {
	var postings []domain.Posting
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTerms).Get([]byte(term))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &postings)
	})
	return postings, err
}

// AllTerms returns every indexed term in byte order.
func (s *BoltStore) AllTerms() ([]string, error) {
	var terms []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTerms).ForEach(func(k, _ []byte) error {
			terms = append(terms, string(k))
			return nil
		})
	})
	return terms, err
}

func (s *BoltStore) DeleteDocument(docID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return deleteDocument(tx, docID)
	})
}

// deleteDocument removes the postings of every chunk of docID, then the
// chunks and the document itself.
func deleteDocument(tx *bbolt.Tx, docID string) error {
	ids, err := docChunkIDs(tx, docID)
	if err != nil {
		return err
	}

	chunks := tx.Bucket(bucketChunks)
	blobs := tx.Bucket(bucketBlobs)
	for _, id := range ids {
		c, ok, err := readChunk(tx, id)
		if err != nil {
			return err
		}
		if ok {
			if err := removePostings(tx, id, c.Terms()); err != nil {
				return err
			}
		}
		if err := chunks.Delete([]byte(id)); err != nil {
			return err
		}
		if err := blobs.Delete([]byte(id)); err != nil {
			return err
		}
	}

	if err := tx.Bucket(bucketDocChunks).Delete([]byte(docID)); err != nil {
		return err
	}
	return tx.Bucket(bucketDocs).Delete([]byte(docID))
}

func removePostings(tx *bbolt.Tx, chunkID string, terms []string) error {
	b := tx.Bucket(bucketTerms)
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true

		data := b.Get([]byte(term))
		if data == nil {
			continue
		}
		var postings []domain.Posting
		if err := json.Unmarshal(data, &postings); err != nil {
			return fmt.Errorf("decode postings of %q: %w", term, err)
		}

		filtered := postings[:0]
		for _, p := range postings {
			if p.ChunkID != chunkID {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			if err := b.Delete([]byte(term)); err != nil {
				return err
			}
			continue
		}
		out, err := json.Marshal(filtered)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(term), out); err != nil {
			return err
		}
	}
	return nil
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// BatchIndex writes files in a single transaction. A document that is
// already stored is replaced, postings included.
func (s *BoltStore) BatchIndex(files []port.IndexedFile) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		docsBucket := tx.Bucket(bucketDocs)
		chunksBucket := tx.Bucket(bucketChunks)
		blobsBucket := tx.Bucket(bucketBlobs)
		docChunksBucket := tx.Bucket(bucketDocChunks)
		termsBucket := tx.Bucket(bucketTerms)

		allPostings := make(map[string][]domain.Posting)

		for _, file := range files {
			if err := deleteDocument(tx, file.Doc.ID); err != nil {
				return fmt.Errorf("replace %s: %w", file.Doc.Path, err)
			}

			meta := docMeta{
				Path:    file.Doc.Path,
				ModTime: file.Doc.ModTime.Unix(),
				Lang:    file.Doc.Lang,
			}
			data, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			if err := docsBucket.Put([]byte(file.Doc.ID), data); err != nil {
				return err
			}

			chunkIDs := make([]string, 0, len(file.Chunks))
			for _, chunk := range file.Chunks {
				data, err := json.Marshal(chunkMeta{
					DocID:     chunk.DocID,
					StartLine: chunk.StartLine,
					EndLine:   chunk.EndLine,
					Tokens:    chunk.Tokens,
				})
				if err != nil {
					return err
				}
				if err := chunksBucket.Put([]byte(chunk.ID), data); err != nil {
					return err
				}
				if err := blobsBucket.Put([]byte(chunk.ID), []byte(chunk.Text)); err != nil {
					return err
				}
				chunkIDs = append(chunkIDs, chunk.ID)
			}

			chunkIDsData, err := json.Marshal(chunkIDs)
			if err != nil {
				return err
			}
			if err := docChunksBucket.Put([]byte(file.Doc.ID), chunkIDsData); err != nil {
				return err
			}

			for term, byChunk := range file.Postings {
				for chunkID, positions := range byChunk {
					allPostings[term] = append(allPostings[term], domain.Posting{
						ChunkID:   chunkID,
						TF:        len(positions),
						Positions: positions,
					})
				}
			}
		}

		for term, newPostings := range allPostings {
			var existing []domain.Posting
			if data := termsBucket.Get([]byte(term)); data != nil {
				if err := json.Unmarshal(data, &existing); err != nil {
					return fmt.Errorf("decode postings of %q: %w", term, err)
				}
			}
			sort.Slice(newPostings, func(i, j int) bool { return newPostings[i].ChunkID < newPostings[j].ChunkID })
			existing = append(existing, newPostings...)
			data, err := json.Marshal(existing)
			if err != nil {
				return err
			}
			if err := termsBucket.Put([]byte(term), data); err != nil {
				return err
			}
		}

		return nil
	})
}
