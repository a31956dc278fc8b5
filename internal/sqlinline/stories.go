package sqlinline

const QInsertStory = `--sql 2c34c65b-e042-4140-83b5-8ab85d3bf1fe
insert into stories (id, user_id, topic, grade, subject, image_layout, story_url, worksheet_url, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, now())
returning id, created_at;
`

const QSelectStoriesByUser = `--sql 1a6eac1e-acd6-4847-a5ea-877ffe494649
select id, topic, grade, subject, image_layout, story_url, worksheet_url, created_at
from stories
where user_id = $1::uuid
order by created_at desc
limit $2::int;
`

const QSelectStoryForUser = `--sql d4428414-8931-49c9-83c1-5094cb12c38f
select id, user_id, topic, grade, subject, image_layout, story_url, worksheet_url, created_at
from stories
where id = $1::uuid and user_id = $2::uuid
limit 1;
`

const QCountStoriesByUser = `--sql 04f94d66-a75b-4ee4-9fca-749a287236e2
select count(*) from stories where user_id = $1::uuid;
`
